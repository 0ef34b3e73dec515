package main

import (
	"fmt"
	"net/http"
	"net/smtp"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
)

// modeCookie is the single piece of client-persisted state: which view
// of the portfolio (qa / devops / full) the visitor picked.
const modeCookie = "site_mode"

func currentMode(c *gin.Context) Mode {
	raw, _ := c.Cookie(modeCookie)
	return parseMode(raw)
}

func main() {
	initDB()
	initAdminToken()

	terminalCfg := loadTerminalConfig("data/terminal.yaml")
	hub := newTerminalHub()
	hub.startSweeper(10 * time.Minute)

	r := gin.Default()
	r.LoadHTMLGlob("templates/*")

	r.Static("/images", "./images")
	r.Static("/static", "./static")

	r.Use(visitorTrackingMiddleware())

	// Home page route
	r.GET("/", func(c *gin.Context) {
		mode := currentMode(c)
		c.HTML(http.StatusOK, "index.html", gin.H{
			"aboutMeContent": AboutMe,
			"mode":           mode,
			"sections":       sectionsFor(mode),
			"stats":          statsFor(mode),
			"projects":       projectsFor(mode),
			"year":           time.Now().Year(),
		})
	})

	// Mode selector: swaps the visible sections, hero statistics, and
	// project cards, and remembers the choice in a cookie
	r.POST("/mode", func(c *gin.Context) {
		mode := parseMode(c.PostForm("mode"))
		c.SetCookie(modeCookie, string(mode), 3600*24*365, "/", "", false, false)
		go recordModeEvent(mode)

		c.HTML(http.StatusOK, "mode-content.html", gin.H{
			"mode":     mode,
			"sections": sectionsFor(mode),
			"stats":    statsFor(mode),
			"projects": projectsFor(mode),
		})
	})

	// HTMX fragment for the current mode (used on page load)
	r.GET("/mode-content", func(c *gin.Context) {
		mode := currentMode(c)
		c.HTML(http.StatusOK, "mode-content.html", gin.H{
			"mode":     mode,
			"sections": sectionsFor(mode),
			"stats":    statsFor(mode),
			"projects": projectsFor(mode),
		})
	})

	// HTMX Contact form endpoint - returns just the form HTML
	r.GET("/contact-form", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"title": "Contact Me",
		})
	})

	// Work experience content
	r.GET("/work-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "work-content.html", gin.H{
			"jobTitle":  "DevOps Engineer",
			"company":   "Northwind Logistics",
			"startDate": "Mar 2021",
			"endDate":   "Present",
			"bulletPoints": []string{
				"Own patching and provisioning automation for a 200+ host RHEL estate with staged rollouts and automatic rollback",
				"Cut mean patch-cycle time from two days to under four hours by batching hosts behind health gates",
				"Built fleet version and drift reporting that replaced a quarterly audit spreadsheet",
			},
			"jobTitle2":  "QA Automation Engineer",
			"company2":   "Hartley Payments",
			"startDate2": "Jun 2018",
			"endDate2":   "Mar 2021",
			"bulletPoints2": []string{
				"Built the API regression harness that gates every merge request, covering 1,400+ cases",
				"Halved the defect escape rate over two release cycles with risk-based test planning",
				"Ran release sign-off for 35 production releases",
			},
		})
	})

	// Education content
	r.GET("/education-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "education-content.html", gin.H{
			"degree":      "BSc Computer Science",
			"institution": "University of Minnesota",
			"startDate":   "Sept 2014",
			"endDate":     "May 2018",
			"bulletPoints": []string{
				"Focus on systems programming and software testing",
			},
			"degree2":      "Red Hat Certified Engineer",
			"institution2": "Red Hat",
			"startDate2":   "2022",
			"endDate2":     "Present",
			"bulletPoints2": []string{
				"Automation with Ansible, system administration at scale",
			},
		})
	})

	// Handle contact form submission with HTMX
	r.POST("/contact", func(c *gin.Context) {
		name := c.PostForm("fullName")
		email := c.PostForm("email")
		message := c.PostForm("message")

		// Send email
		err := sendContactEmail(name, email, message)
		if err != nil {
			// Return error message HTML fragment
			c.HTML(http.StatusOK, "contact-error.html", gin.H{
				"error": "Sorry, there was an error sending your message. Please try again later.",
			})
			return
		}

		// Return success message HTML fragment
		c.HTML(http.StatusOK, "contact-success.html", gin.H{
			"success": "Thank you for your message! I'll get back to you soon.",
		})
	})

	setupTerminalRoutes(r, hub, terminalCfg)
	setupProjectRoutes(r)
	setupAdminRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}

func sendContactEmail(name, email, message string) error {
	// Email configuration - use environment variables for security
	smtpHost := os.Getenv("SMTP_HOST") // e.g., "smtp.gmail.com"
	smtpPort := os.Getenv("SMTP_PORT") // e.g., "587"
	smtpUser := os.Getenv("SMTP_USER") // your email
	smtpPass := os.Getenv("SMTP_PASS") // your app password
	toEmail := os.Getenv("TO_EMAIL")   // where you want to receive emails

	// Default values for development (remove in production)
	if smtpHost == "" {
		smtpHost = "smtp.gmail.com"
	}
	if smtpPort == "" {
		smtpPort = "587"
	}
	if toEmail == "" {
		toEmail = "caleb.mcnair.dev@gmail.com"
	}

	// Validate required fields
	if smtpUser == "" || smtpPass == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}

	// Create message
	subject := fmt.Sprintf("Portfolio Contact: %s", name)
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, name, email, message)

	// Compose email
	msg := []byte("To: " + toEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + smtpUser + "\r\n" +
		"Reply-To: " + email + "\r\n" +
		"\r\n" +
		body + "\r\n")

	// SMTP authentication
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)

	// Send email
	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, smtpUser, []string{toEmail}, msg)
	if err != nil {
		fmt.Printf("Error sending email: %v\n", err)
		return err
	}

	fmt.Printf("Email sent successfully from %s (%s)\n", name, email)
	return nil
}

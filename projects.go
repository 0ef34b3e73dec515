// projects.go - Project writeups rendered from Markdown
package main

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// The parser configuration never changes, so build it once and share it
// (goldmark parsing is safe for concurrent use).
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownInstance
}

// projectBySlug resolves a doc slug against the project list. Only
// slugs registered in content.go are served, which also keeps path
// traversal out of the file lookup.
func projectBySlug(slug string) (Project, bool) {
	for _, p := range allProjects {
		if p.DocSlug != "" && p.DocSlug == slug {
			return p, true
		}
	}
	return Project{}, false
}

// renderProjectDoc reads docs/<slug>.md and renders it to HTML. The
// Markdown files are documentation for tooling that lives elsewhere;
// this site only displays them.
func renderProjectDoc(slug string) (template.HTML, error) {
	source, err := os.ReadFile(filepath.Join("docs", slug+".md"))
	if err != nil {
		return "", fmt.Errorf("read project doc %q: %w", slug, err)
	}

	var buf bytes.Buffer
	if err := getMarkdown().Convert(source, &buf); err != nil {
		return "", fmt.Errorf("render project doc %q: %w", slug, err)
	}
	return template.HTML(buf.String()), nil
}

// Setup project writeup routes
func setupProjectRoutes(r *gin.Engine) {
	r.GET("/projects/:slug", func(c *gin.Context) {
		slug := c.Param("slug")

		project, ok := projectBySlug(slug)
		if !ok {
			c.HTML(http.StatusNotFound, "error.html", gin.H{
				"error": "Project not found",
				"year":  time.Now().Year(),
			})
			return
		}

		doc, err := renderProjectDoc(slug)
		if err != nil {
			c.HTML(http.StatusNotFound, "error.html", gin.H{
				"error": "Project writeup unavailable",
				"year":  time.Now().Year(),
			})
			return
		}

		c.HTML(http.StatusOK, "project.html", gin.H{
			"title":   project.Title,
			"summary": project.Summary,
			"repo":    project.Repo,
			"doc":     doc,
			"year":    time.Now().Year(),
		})
	})
}

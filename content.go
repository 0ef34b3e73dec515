package main

// Mode selects which slice of the portfolio is shown: the QA side, the
// DevOps side, or everything. Persisted client-side in a single cookie.
type Mode string

const (
	ModeQA     Mode = "qa"
	ModeDevOps Mode = "devops"
	ModeFull   Mode = "full"
)

// parseMode maps a raw cookie/form value to a known mode. Anything
// unrecognized (including the empty string on first visit) falls back
// to the full view.
func parseMode(raw string) Mode {
	switch Mode(raw) {
	case ModeQA, ModeDevOps, ModeFull:
		return Mode(raw)
	default:
		return ModeFull
	}
}

// Section is one swappable content block on the home page.
type Section struct {
	Title string
	Body  string
}

// Stat is one hero statistic shown under the intro banner.
type Stat struct {
	Label string
	Value string
}

// Project is one project card. Repo is optional: cards without a
// repository URL render without a link. DocSlug points at the rendered
// writeup under /projects/ when one exists.
type Project struct {
	Title   string
	Summary string
	Repo    string
	DocSlug string
	Modes   []Mode
}

var AboutMe = `I break things on purpose so they don't break in production.
	Most of my time goes into test automation, release pipelines, and the
	unglamorous plumbing that keeps a fleet of Linux servers patched and
	boring. When I'm not staring at a failing pipeline, I'm usually at the
	climbing gym or tinkering with my homelab.`

var modeSections = map[Mode][]Section{
	ModeQA: {
		{
			Title: "Test Automation",
			Body: `Built and maintained regression suites covering REST APIs and
			web UIs, wired into CI so every merge request gets a full pass before
			review. Flaky-test triage and quarantine workflow cut false-negative
			pipeline failures to near zero.`,
		},
		{
			Title: "Quality Process",
			Body: `Introduced risk-based test planning and release sign-off
			checklists; defect escape rate dropped by half over two release
			cycles. Wrote the team's testing handbook and onboarding labs.`,
		},
	},
	ModeDevOps: {
		{
			Title: "Platform & Automation",
			Body: `Own the patching and provisioning automation for a ~200 host
			RHEL estate: Ansible playbooks, staged rollouts with health gates,
			and automatic rollback on failed verification.`,
		},
		{
			Title: "Observability",
			Body: `Stood up fleet-wide version and drift reporting so audits
			stopped being a spreadsheet exercise. Dashboards answer "what is
			running where" in seconds instead of a day of ssh.`,
		},
	},
}

// sectionsFor returns the content blocks for a mode. The full view is
// the concatenation of both specialties, QA first.
func sectionsFor(m Mode) []Section {
	if m == ModeFull {
		out := append([]Section{}, modeSections[ModeQA]...)
		return append(out, modeSections[ModeDevOps]...)
	}
	return modeSections[m]
}

var modeStats = map[Mode][]Stat{
	ModeQA: {
		{Label: "Automated test cases", Value: "1,400+"},
		{Label: "Release sign-offs", Value: "35"},
		{Label: "Defect escape rate", Value: "-52%"},
	},
	ModeDevOps: {
		{Label: "Servers under automation", Value: "200+"},
		{Label: "Patch cycles run", Value: "48"},
		{Label: "Mean rollout time", Value: "22 min"},
	},
	ModeFull: {
		{Label: "Years in QA & DevOps", Value: "7"},
		{Label: "Automated test cases", Value: "1,400+"},
		{Label: "Servers under automation", Value: "200+"},
	},
}

// statsFor returns the hero statistics for a mode.
func statsFor(m Mode) []Stat {
	return modeStats[m]
}

var allProjects = []Project{
	{
		Title: "Patching Workflow",
		Summary: `Staged OS patching across a RHEL fleet with Ansible: canary
		batch, health verification, then the remaining hosts, with automatic
		exclusion of servers holding critical workloads.`,
		DocSlug: "patching-workflow",
		Modes:   []Mode{ModeDevOps},
	},
	{
		Title: "RPM Package Check",
		Summary: `Compliance check that compares installed RPM versions against
		a signed baseline and reports drift per host group, used as a gate in
		the patching pipeline.`,
		DocSlug: "rpm-package-check",
		Modes:   []Mode{ModeDevOps, ModeQA},
	},
	{
		Title: "Server Version Dashboard",
		Summary: `Fleet inventory report that collects OS, kernel, and key
		package versions from every host and renders a sortable dashboard for
		audit season.`,
		DocSlug: "server-version-dashboard",
		Modes:   []Mode{ModeDevOps},
	},
	{
		Title: "API Regression Harness",
		Summary: `Contract and regression tests for a payments API, generated
		from the OpenAPI spec and run on every merge request.`,
		Repo:  "https://github.com/calebmn/api-regression-harness",
		Modes: []Mode{ModeQA},
	},
	{
		Title: "This Site",
		Summary: `The portfolio you are reading: Go, Gin, and HTMX, with a
		server-driven terminal animation and no client framework.`,
		Repo:  "https://github.com/calebmn/opsfolio",
		Modes: []Mode{ModeQA, ModeDevOps},
	},
}

// projectsFor filters the project cards down to the active mode. The
// full view shows everything.
func projectsFor(m Mode) []Project {
	if m == ModeFull {
		return allProjects
	}
	var out []Project
	for _, p := range allProjects {
		for _, pm := range p.Modes {
			if pm == m {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

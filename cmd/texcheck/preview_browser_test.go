//go:build e2e

package main

import (
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"texcheck/internal/classify"
	"texcheck/internal/compiler"
	"texcheck/internal/document"
	"texcheck/internal/harness"
	"texcheck/internal/report"
	"texcheck/internal/validate"
)

func previewRun() *harness.RunResult {
	doc := &document.Document{
		Path: "main.tex",
		Deps: []document.DependencyRef{
			{Name: "mystyle", Kind: document.Style, Line: 2},
			{Name: "modules/alpha", Kind: document.Module, Line: 4},
		},
	}
	syntax := classify.Classification{Category: classify.SyntaxError, Excerpt: "! Undefined control sequence."}
	return &harness.RunResult{
		StartedAt:    time.Now(),
		Outcome:      harness.OutcomeFull,
		CompilerName: "pdflatex",
		Doc:          doc,
		Statuses: []validate.DependencyStatus{
			{Ref: doc.Deps[0], Exists: true},
			{Ref: doc.Deps[1], Exists: true},
		},
		Basic: &harness.AttemptResult{Target: "document", Attempt: &compiler.Attempt{Target: "document", Profile: "basic", Passed: true}},
		Full: &harness.AttemptResult{Target: "document",
			Attempt:        &compiler.Attempt{Target: "document", Profile: "full", ExitCode: 1, Log: syntax.Excerpt},
			Classification: &syntax},
		Isolation: []harness.AttemptResult{
			{Target: "modules/alpha",
				Attempt:        &compiler.Attempt{Target: "modules/alpha", Profile: "isolation", ExitCode: 1, Log: syntax.Excerpt},
				Classification: &syntax},
		},
	}
}

func TestPreviewBrowser_RendersReport(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	page := report.RenderHTML(previewRun())
	go servePreview(ctx, ln, page)
	base := fmt.Sprintf("http://%s", ln.Addr())

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var bodyHTML string
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(base),
		chromedp.WaitReady("#report", chromedp.ByID),
		chromedp.InnerHTML("#report", &bodyHTML, chromedp.ByID),
	)
	if err != nil {
		t.Fatalf("chromedp: %v", err)
	}

	for _, want := range []string{"texcheck report", "modules/alpha", "SyntaxError"} {
		if !strings.Contains(bodyHTML, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

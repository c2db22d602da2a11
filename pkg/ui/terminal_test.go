package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"instascraper/pkg/instagram"
)

func TestPrinter(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)

	p.Info("Target", "someone")
	p.Success("done")
	p.Warning("slow", "rate limited")
	p.Error("failed", errors.New("boom"))

	assert.Contains(t, out.String(), "Target:")
	assert.Contains(t, out.String(), "someone")
	assert.Contains(t, out.String(), "done")
	assert.Contains(t, out.String(), "slow: rate limited")
	assert.NotContains(t, out.String(), "failed")
	assert.Contains(t, errOut.String(), "failed: boom")
}

func TestPrinterQuiet(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)
	p.SetQuiet(true)

	p.Banner()
	p.Info("Target", "someone")
	p.Highlight("starting")
	p.Error("failed")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "failed")
}

func TestWithDetail(t *testing.T) {
	assert.Equal(t, "msg", withDetail("msg", nil))
	assert.Equal(t, "msg", withDetail("msg", []interface{}{""}))
	assert.Equal(t, "msg: 3", withDetail("msg", []interface{}{3}))
}

func TestProfileSummary(t *testing.T) {
	bio := "photos of cats"
	user := instagram.User{ID: "42", Username: "someone", FullName: "Some One", IsVerified: true, Biography: &bio}

	s := ProfileSummary(user, Counts{MainStories: 2, HighlightStories: 3, Posts: 10, Comments: 4})

	assert.Contains(t, s, "someone")
	assert.Contains(t, s, "Some One")
	assert.Contains(t, s, "2 main, 3 highlight")
	assert.Contains(t, s, "photos of cats")
	assert.Contains(t, s, "Verified")
}

// File: internal/settings/manager.go
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultTargetURL      = "https://example.com/"
	defaultScreenshotPath = "artifacts/screenshot.png"
	defaultTimeout        = 30 * time.Second
	defaultProfileName    = "Default"

	// BrowserChrome and BrowserEdge are the supported browser channels.
	BrowserChrome = "chrome"
	BrowserEdge   = "msedge"
)

var supportedBrowsers = []string{BrowserChrome, BrowserEdge}

var sanitizePattern = regexp.MustCompile(`[^\w\-]+`)

// Sanitize reduces a name to a filesystem-safe token. Empty or fully invalid
// input yields "Default".
func Sanitize(name string) string {
	cleaned := sanitizePattern.ReplaceAllString(strings.TrimSpace(name), "_")
	if cleaned == "" {
		return "Default"
	}
	return cleaned
}

// Load reads the settings document at path. A missing file creates and
// returns a normalized default document. A present but unreadable or
// malformed file is an error: it aborts the whole run rather than silently
// running with defaults.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		doc := &Document{}
		Normalize(doc)
		if err := Save(path, doc); err != nil {
			return nil, fmt.Errorf("creating default settings: %w", err)
		}
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	Normalize(&doc)
	return &doc, nil
}

// Save normalizes and writes the document as indented camelCase JSON,
// creating parent directories as needed.
func Save(path string, doc *Document) error {
	Normalize(doc)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing settings %s: %w", path, err)
	}
	return nil
}

// Marshal renders the document as indented camelCase JSON, the same shape
// Save writes to disk.
func Marshal(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return data, nil
}

// Clone produces a deep copy of the document via a JSON round trip, then
// normalizes it. A run consumes the clone so concurrent edits to the original
// cannot leak into an in-flight run.
func Clone(doc *Document) *Document {
	data, err := json.Marshal(doc)
	if err != nil {
		out := &Document{}
		Normalize(out)
		return out
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		out = Document{}
	}
	Normalize(&out)
	return &out
}

// Normalize repairs a document in place so that downstream consumers never
// see missing names, dangling profile references, or run-mode fields that
// contradict the task invariant.
func Normalize(doc *Document) {
	if strings.TrimSpace(doc.TargetURL) == "" {
		doc.TargetURL = defaultTargetURL
	}
	if strings.TrimSpace(doc.ScreenshotPath) == "" {
		doc.ScreenshotPath = defaultScreenshotPath
	}
	if !browserSupported(doc.Browser) {
		doc.Browser = BrowserChrome
	}
	if doc.Timeout <= 0 {
		doc.Timeout = Duration(defaultTimeout)
	}

	if len(doc.Profiles) == 0 {
		doc.Profiles = append(doc.Profiles, defaultProfile(defaultProfileName))
	}
	normalizeProfiles(doc)

	if len(doc.Tasks) == 0 {
		doc.Tasks = append(doc.Tasks, defaultTask(doc.Profiles[0].Name))
	}

	if strings.TrimSpace(doc.SelectedProfile) == "" || doc.ProfileByName(doc.SelectedProfile) == nil {
		doc.SelectedProfile = doc.Profiles[0].Name
	}
	normalizeTasks(doc)
	normalizeLogin(&doc.Login)
	normalizeInteraction(&doc.Interaction)
}

func browserSupported(name string) bool {
	for _, b := range supportedBrowsers {
		if b == name {
			return true
		}
	}
	return false
}

func defaultProfile(name string) Profile {
	return Profile{
		Name:            name,
		UserDataDirName: "pagepilot_" + Sanitize(name),
	}
}

func defaultTask(profileName string) Task {
	return Task{
		ID:             uuid.New(),
		Name:           "Task 1",
		ProfileName:    profileName,
		Enabled:        true,
		RunMode:        RunImmediate,
		RepeatDaily:    true,
		UseCredentials: true,
	}
}

func normalizeProfiles(doc *Document) {
	seen := make(map[string]bool)
	for i := range doc.Profiles {
		p := &doc.Profiles[i]
		if strings.TrimSpace(p.Name) == "" {
			p.Name = uniqueName("Profile", seen)
		}
		if seen[strings.ToLower(p.Name)] {
			p.Name = uniqueName(p.Name, seen)
		}
		seen[strings.ToLower(p.Name)] = true

		if strings.TrimSpace(p.UserDataDirName) == "" {
			p.UserDataDirName = "pagepilot_" + Sanitize(p.Name)
		}
	}
}

func normalizeTasks(doc *Document) {
	seen := make(map[string]bool)
	for i := range doc.Tasks {
		t := &doc.Tasks[i]
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if strings.TrimSpace(t.Name) == "" {
			t.Name = uniqueName("Task", seen)
		}
		if seen[strings.ToLower(t.Name)] {
			t.Name = uniqueName(t.Name, seen)
		}
		seen[strings.ToLower(t.Name)] = true

		if strings.TrimSpace(t.ProfileName) == "" || doc.ProfileByName(t.ProfileName) == nil {
			t.ProfileName = doc.SelectedProfile
		}
		if !t.RunMode.Valid() {
			t.RunMode = RunImmediate
		}

		// Keep the run-mode invariant: exactly one of delay/runAt populated,
		// matching the mode; immediate carries neither.
		switch t.RunMode {
		case RunDelay:
			if t.Delay == nil || *t.Delay <= 0 {
				d := Duration(time.Minute)
				t.Delay = &d
			}
			t.RunAt = nil
		case RunDailyTime:
			if t.RunAt == nil {
				t.RunAt = &TimeOfDay{Hour: 9}
			}
			t.Delay = nil
		default:
			t.Delay = nil
			t.RunAt = nil
		}
	}
}

func normalizeLogin(l *Login) {
	if strings.TrimSpace(l.UserSelector) == "" {
		l.UserSelector = "#email"
	}
	if strings.TrimSpace(l.PassSelector) == "" {
		l.PassSelector = "#pass"
	}
	if strings.TrimSpace(l.SubmitSelector) == "" {
		l.SubmitSelector = "button[type=submit]"
	}
	if l.WaitTimeout <= 0 {
		l.WaitTimeout = Duration(defaultTimeout)
	}
}

func normalizeInteraction(in *Interaction) {
	if len(in.Selectors) == 0 {
		in.Selectors = []string{
			"div[role='textbox'][contenteditable='true']",
			"[contenteditable='true']",
		}
	}
	if in.MaxRounds <= 0 {
		in.MaxRounds = 3
	}
}

// uniqueName appends a numeric suffix until the candidate is unused. The seen
// set is keyed case-insensitively but names keep their display casing.
func uniqueName(base string, seen map[string]bool) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "Item"
	}
	candidate := base
	for suffix := 1; seen[strings.ToLower(candidate)]; {
		suffix++
		candidate = fmt.Sprintf("%s %d", base, suffix)
	}
	return candidate
}

// File: internal/settings/document.go
// The settings document is the user-owned description of what to run: global
// browser preferences, a set of named browser profiles, the task list, and
// the login descriptor evaluated against each profile's credentials. The run
// pipeline consumes it as an immutable snapshot; only this package mutates it.
package settings

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunMode is a task's trigger policy.
type RunMode string

const (
	// RunImmediate executes the task as soon as its turn comes up.
	RunImmediate RunMode = "immediate"
	// RunDelay executes after a fixed delay from the task's start of turn.
	RunDelay RunMode = "delay"
	// RunDailyTime executes at a configured time of day, optionally repeating.
	RunDailyTime RunMode = "dailyTime"
)

// Valid reports whether the run mode is one of the known values.
func (m RunMode) Valid() bool {
	switch m {
	case RunImmediate, RunDelay, RunDailyTime:
		return true
	}
	return false
}

// Document is the top-level settings document, stored as camelCase JSON.
type Document struct {
	TargetURL       string    `json:"targetUrl"`
	Headless        bool      `json:"headless"`
	Browser         string    `json:"browser"`
	ScreenshotPath  string    `json:"screenshotPath"`
	Timeout         Duration  `json:"timeout"`
	SelectedProfile string    `json:"selectedProfile"`
	Profiles        []Profile `json:"profiles"`
	Tasks           []Task    `json:"tasks"`
	Login           Login     `json:"login"`
	Interaction     Interaction `json:"interaction"`
}

// Profile names a persistent browser identity: an on-disk storage directory
// plus optional credentials and proxy settings.
type Profile struct {
	Name            string      `json:"name"`
	UserDataDirName string      `json:"userDataDirName"`
	Credentials     Credentials `json:"credentials"`
	Proxy           Proxy       `json:"proxy"`
}

// Credentials is an optional username/password pair for a profile.
type Credentials struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

// Proxy describes an optional outbound proxy for a profile's sessions.
type Proxy struct {
	Enabled  bool   `json:"enabled"`
	Server   string `json:"server"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Task describes one scheduled automation run against a profile.
//
// Invariant: exactly one of Delay/RunAt is populated, matching RunMode;
// RunImmediate has neither. Normalize enforces this.
type Task struct {
	ID                     uuid.UUID  `json:"id"`
	Name                   string     `json:"name"`
	ProfileName            string     `json:"profileName"`
	Enabled                bool       `json:"enabled"`
	RunMode                RunMode    `json:"runMode"`
	Delay                  *Duration  `json:"delay,omitempty"`
	RunAt                  *TimeOfDay `json:"runAt,omitempty"`
	RepeatDaily            bool       `json:"repeatDaily"`
	UseCredentials         bool       `json:"useCredentials"`
	TargetURLOverride      string     `json:"targetUrlOverride,omitempty"`
	ScreenshotPathOverride string     `json:"screenshotPathOverride,omitempty"`
}

// Login is the authentication descriptor: where to log in and which selectors
// signal progress. It is global to a run but evaluated against a specific
// profile's credentials.
type Login struct {
	URL               string       `json:"url"`
	UserSelector      string       `json:"userSelector"`
	PassSelector      string       `json:"passSelector"`
	SubmitSelector    string       `json:"submitSelector"`
	LoggedInSelector  string       `json:"loggedInCheckSelector,omitempty"`
	LandingSelector   string       `json:"afterLoginWaitSelector,omitempty"`
	TwoFactorSelector string       `json:"twoFactorSelector,omitempty"`
	KnownErrors       []KnownError `json:"knownErrors,omitempty"`
	WaitTimeout       Duration     `json:"waitTimeout"`
}

// KnownError pairs a selector with an exact message fragment. A visible match
// whose text contains the message marks the login as failed even when a page
// level success signal already fired.
type KnownError struct {
	Selector string `json:"selector"`
	Message  string `json:"message"`
}

// Interaction configures the best-effort text injection step: an ordered list
// of locator candidates for the target editable node, the literal text to
// insert, and how many full passes to attempt.
type Interaction struct {
	Selectors []string `json:"selectors"`
	Text      string   `json:"text"`
	MaxRounds int      `json:"maxRounds"`
}

// ProfileByName returns the profile with the given name, nil if absent.
// Profile names are case-sensitive identity keys.
func (d *Document) ProfileByName(name string) *Profile {
	for i := range d.Profiles {
		if d.Profiles[i].Name == name {
			return &d.Profiles[i]
		}
	}
	return nil
}

// EnabledTasks returns the tasks flagged enabled, in document order.
func (d *Document) EnabledTasks() []Task {
	var out []Task
	for _, t := range d.Tasks {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

// -- Duration --

// Duration is a time.Duration that marshals to a Go duration string ("1m30s")
// and also accepts a bare number of milliseconds for hand-edited documents.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Duration(d).String())), nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		parsed, err := time.ParseDuration(unq)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", unq, err)
		}
		*d = Duration(parsed)
		return nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %s: %w", s, err)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// -- TimeOfDay --

// TimeOfDay is a wall-clock time within a day, marshaled as "15:04".
type TimeOfDay struct {
	Hour   int
	Minute int
}

// At anchors the time of day onto the date of the given instant, in that
// instant's location.
func (t TimeOfDay) At(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("invalid time of day %s", data)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTimeOfDay parses "HH:MM" (24 hour clock) into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

package models

import (
	"encoding/json"
	"time"
)

const (
	// DateLayout is the calendar day format used by every stored date.
	DateLayout = "2006-01-02"
	// TimeLayout is the time-of-day format of lesson plans.
	TimeLayout = "15:04"
	// DefaultLessonTime is applied when a lesson is scheduled without a time.
	DefaultLessonTime = "09:00"

	allSubgroupsValue = "all"
)

// SubgroupTarget is either every subgroup of a class or one specific subgroup.
// The zero value targets all subgroups.
type SubgroupTarget struct {
	id string
}

// AllSubgroups targets every subgroup of the class.
func AllSubgroups() SubgroupTarget { return SubgroupTarget{} }

// SpecificSubgroup targets one subgroup; an empty id or "all" yields AllSubgroups.
func SpecificSubgroup(id string) SubgroupTarget {
	if id == allSubgroupsValue {
		return AllSubgroups()
	}
	return SubgroupTarget{id: id}
}

// IsAll reports whether the target covers every subgroup.
func (t SubgroupTarget) IsAll() bool { return t.id == "" }

// ID returns the specific subgroup id and true, or "" and false for all.
func (t SubgroupTarget) ID() (string, bool) { return t.id, t.id != "" }

// Matches reports whether a plan with this target applies to subgroupID.
// AllSubgroups applies to every subgroup.
func (t SubgroupTarget) Matches(subgroupID string) bool {
	return t.IsAll() || t.id == subgroupID
}

func (t SubgroupTarget) String() string {
	if t.IsAll() {
		return allSubgroupsValue
	}
	return t.id
}

func (t SubgroupTarget) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *SubgroupTarget) UnmarshalText(text []byte) error {
	*t = SpecificSubgroup(string(text))
	return nil
}

// LessonFile is a file attached to a lesson plan. Files uploaded through the
// API live in the attachment store (Path); imported files may carry their
// content inline as a data URL (Data).
type LessonFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Path string `json:"path,omitempty"`
	Data string `json:"data,omitempty"`
}

// LessonPlan is one scheduled lesson of a class on a calendar day.
type LessonPlan struct {
	ID          string         `json:"id"`
	Date        string         `json:"date"`
	Time        string         `json:"time,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Files       []LessonFile   `json:"files"`
	ClassID     string         `json:"classId,omitempty"`
	SubgroupID  SubgroupTarget `json:"subgroupId"`
}

// UnmarshalJSON tolerates null subgroup ids and missing file lists.
func (p *LessonPlan) UnmarshalJSON(data []byte) error {
	type alias LessonPlan
	var raw struct {
		alias
		SubgroupID *string `json:"subgroupId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = LessonPlan(raw.alias)
	p.SubgroupID = AllSubgroups()
	if raw.SubgroupID != nil {
		p.SubgroupID = SpecificSubgroup(*raw.SubgroupID)
	}
	if p.Files == nil {
		p.Files = []LessonFile{}
	}
	return nil
}

// FileIndex returns the position of the attached file with id or -1.
func (p *LessonPlan) FileIndex(id string) int {
	for i := range p.Files {
		if p.Files[i].ID == id {
			return i
		}
	}
	return -1
}

// LessonFilter narrows lesson plan queries.
type LessonFilter struct {
	ClassID string
	// Subgroup, when set, keeps plans for that subgroup and plans for all subgroups.
	SubgroupID string
	// Archived selects plans of archived classes instead of active ones.
	Archived bool
}

// RecurrenceMode governs how many plans a single creation produces.
type RecurrenceMode string

const (
	RecurrenceOnce   RecurrenceMode = "once"
	RecurrenceWeekly RecurrenceMode = "weekly"
	RecurrenceCustom RecurrenceMode = "custom"
)

// DeleteMode selects single or this-and-future lesson deletion.
type DeleteMode string

const (
	DeleteSingle DeleteMode = "single"
	DeleteFuture DeleteMode = "future"
)

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// IsDate reports whether value is a valid YYYY-MM-DD calendar day.
func IsDate(value string) bool {
	_, err := ParseDate(value)
	return err == nil
}

// IsTimeOfDay reports whether value is a valid HH:MM time.
func IsTimeOfDay(value string) bool {
	_, err := time.Parse(TimeLayout, value)
	return err == nil
}

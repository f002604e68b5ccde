package models

// SnapshotVersion tags exported data sets.
const SnapshotVersion = "1.0.0"

// Collections bundles the four core collections. A nil slice means the
// collection is not part of the bundle; an empty slice means it is empty.
type Collections struct {
	Students    []Student    `json:"students"`
	Prizes      []Prize      `json:"prizes"`
	Classes     []Class      `json:"classes"`
	LessonPlans []LessonPlan `json:"lessonPlans"`
}

// Snapshot is the exported/imported data set.
type Snapshot struct {
	Version    string `json:"version"`
	ExportDate string `json:"exportDate"`
	Collections
}

// BackupInfo describes the automatic snapshot.
type BackupInfo struct {
	Exists bool   `json:"exists"`
	Date   string `json:"date,omitempty"`
}

// StorageStats reports space used under the application key prefix.
type StorageStats struct {
	TotalSize  int64 `json:"totalSize"`
	ItemsCount int   `json:"itemsCount"`
	Available  bool  `json:"available"`
}

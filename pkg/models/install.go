package models

import "time"

// InstallResult représente le résultat d'une invocation npm
type InstallResult struct {
	OperationID string        `json:"operation_id"`
	Packages    []string      `json:"packages"`
	Success     bool          `json:"success"`
	ExitCode    int           `json:"exit_code,omitempty"`
	Stdout      []byte        `json:"-"`
	Stderr      []byte        `json:"-"`
	Duration    time.Duration `json:"duration"`
}

// InstallStats contient les compteurs globaux d'installations du worker
type InstallStats struct {
	Total        int64         `json:"total"`
	Success      int64         `json:"success"`
	Failed       int64         `json:"failed"`
	LastDuration time.Duration `json:"last_duration_ns"`
}

package model

import "time"

type Task struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	IntervalDays      int       `json:"interval_days"`
	Paused            bool      `json:"paused"`
	ResponsibleID     *int64    `json:"responsible_id"`
	LastResponsibleID *int64    `json:"last_responsible_id"`
	LastExecutionDate Date      `json:"last_execution_date"`
	NextDueDate       Date      `json:"next_due_date"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// MalformedDate is set when a stored date column could not be parsed.
	MalformedDate bool `json:"-"`
}

type HolidayException struct {
	ID     int64 `json:"id"`
	TaskID int64 `json:"task_id"`
	Date   Date  `json:"date"`
}

type ExecutionRecord struct {
	ID            int64  `json:"id"`
	TaskID        int64  `json:"task_id"`
	TaskName      string `json:"task_name"`
	ResidentID    *int64 `json:"resident_id"`
	ResidentName  string `json:"resident_name"`
	ExecutionDate Date   `json:"execution_date"`

	// MalformedDate is set when the stored execution date could not be parsed.
	MalformedDate bool `json:"-"`
}

// DayHistory lists the task names completed on one calendar day.
type DayHistory struct {
	Date  Date     `json:"date"`
	Tasks []string `json:"tasks"`
}

package models

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// Direction tells which way a KPI improves.
type Direction string

const (
	UpIsBetter   Direction = "UP_IS_BETTER"
	DownIsBetter Direction = "DOWN_IS_BETTER"
)

func (d Direction) IsValid() bool {
	return d == UpIsBetter || d == DownIsBetter
}

// Status is the classification of a single KPI value.
type Status string

const (
	StatusGreen  Status = "GREEN"
	StatusOrange Status = "ORANGE"
	StatusRed    Status = "RED"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusGreen, StatusOrange, StatusRed}

// Severity orders statuses by risk: RED=2, ORANGE=1, GREEN=0.
func (s Status) Severity() int {
	switch s {
	case StatusRed:
		return 2
	case StatusOrange:
		return 1
	default:
		return 0
	}
}

type ActionStatus string

const (
	ActionOpen       ActionStatus = "OPEN"
	ActionInProgress ActionStatus = "IN_PROGRESS"
	ActionDone       ActionStatus = "DONE"
	ActionCancelled  ActionStatus = "CANCELLED"
)

// IsPending reports whether the action still needs work (OPEN or IN_PROGRESS).
func (s ActionStatus) IsPending() bool {
	return s == ActionOpen || s == ActionInProgress
}

func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionOpen, ActionInProgress, ActionDone, ActionCancelled:
		return true
	default:
		return false
	}
}

type ImportType string

const (
	ImportCSV   ImportType = "CSV"
	ImportExcel ImportType = "EXCEL"
)

type ImportStatus string

const (
	ImportPending ImportStatus = "PENDING"
	ImportRunning ImportStatus = "RUNNING"
	ImportSuccess ImportStatus = "SUCCESS"
	ImportFailed  ImportStatus = "FAILED"
)

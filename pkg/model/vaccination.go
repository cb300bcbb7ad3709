package model

// VaccinationStatus is the single-step progression of a user's doses. It only
// ever moves forward: none -> first-dose-completed -> all-completed.
type VaccinationStatus string

const (
	StatusNone               VaccinationStatus = "none"
	StatusFirstDoseCompleted VaccinationStatus = "first-dose-completed"
	StatusAllCompleted       VaccinationStatus = "all-completed"
)

// DoseType is the dose administered in a slot.
type DoseType string

const (
	DoseFirst  DoseType = "first"
	DoseSecond DoseType = "second"
)

var statusRank = map[VaccinationStatus]int{
	StatusNone:               0,
	StatusFirstDoseCompleted: 1,
	StatusAllCompleted:       2,
}

func (s VaccinationStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank orders statuses; unknown values rank as none.
func (s VaccinationStatus) Rank() int {
	return statusRank[s]
}

// NextDose is the dose a user with this status is eligible to book. The bool is
// false once all doses are completed.
func (s VaccinationStatus) NextDose() (DoseType, bool) {
	switch s {
	case StatusAllCompleted:
		return "", false
	case StatusFirstDoseCompleted:
		return DoseSecond, true
	default:
		return DoseFirst, true
	}
}

func (d DoseType) Valid() bool {
	return d == DoseFirst || d == DoseSecond
}

// CompletedStatus is the status reached by taking this dose.
func (d DoseType) CompletedStatus() VaccinationStatus {
	if d == DoseSecond {
		return StatusAllCompleted
	}
	return StatusFirstDoseCompleted
}

// Advance returns the status after booking a dose, never moving backwards.
func Advance(current VaccinationStatus, dose DoseType) VaccinationStatus {
	next := dose.CompletedStatus()
	if current.Valid() && current.Rank() >= next.Rank() {
		return current
	}
	return next
}

package model

import "testing"

func TestAdvance(t *testing.T) {
	tests := []struct {
		name     string
		current  VaccinationStatus
		dose     DoseType
		expected VaccinationStatus
	}{
		{"none takes first dose", StatusNone, DoseFirst, StatusFirstDoseCompleted},
		{"none takes second dose", StatusNone, DoseSecond, StatusAllCompleted},
		{"first completed takes second", StatusFirstDoseCompleted, DoseSecond, StatusAllCompleted},
		{"first completed rebooks first", StatusFirstDoseCompleted, DoseFirst, StatusFirstDoseCompleted},
		{"all completed never regresses", StatusAllCompleted, DoseFirst, StatusAllCompleted},
		{"unknown status treated as none", VaccinationStatus("First dose completed"), DoseFirst, StatusFirstDoseCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Advance(tt.current, tt.dose); got != tt.expected {
				t.Errorf("Advance(%s, %s) = %s, want %s", tt.current, tt.dose, got, tt.expected)
			}
		})
	}
}

func TestAdvance_NeverDecreases(t *testing.T) {
	statuses := []VaccinationStatus{StatusNone, StatusFirstDoseCompleted, StatusAllCompleted}
	doses := []DoseType{DoseFirst, DoseSecond}

	// Walk every sequence of three doses from every starting status.
	for _, start := range statuses {
		for _, d1 := range doses {
			for _, d2 := range doses {
				for _, d3 := range doses {
					status := start
					for _, d := range []DoseType{d1, d2, d3} {
						next := Advance(status, d)
						if next.Rank() < status.Rank() {
							t.Fatalf("status regressed from %s to %s on dose %s", status, next, d)
						}
						status = next
					}
				}
			}
		}
	}
}

func TestNextDose(t *testing.T) {
	if d, ok := StatusNone.NextDose(); !ok || d != DoseFirst {
		t.Errorf("none should be eligible for the first dose, got %s %v", d, ok)
	}
	if d, ok := StatusFirstDoseCompleted.NextDose(); !ok || d != DoseSecond {
		t.Errorf("first-dose-completed should be eligible for the second dose, got %s %v", d, ok)
	}
	if _, ok := StatusAllCompleted.NextDose(); ok {
		t.Error("all-completed should not be eligible for any dose")
	}
}

func TestSlotCapacity(t *testing.T) {
	slot := &Slot{Capacity: 2, RegisteredUsers: []string{"a"}}

	if slot.IsFull() {
		t.Fatal("slot with 1/2 should not be full")
	}
	if slot.Remaining() != 1 {
		t.Errorf("expected 1 remaining, got %d", slot.Remaining())
	}

	slot.RegisteredUsers = append(slot.RegisteredUsers, "b")
	if !slot.IsFull() {
		t.Fatal("slot with 2/2 should be full")
	}
	if !slot.HasUser("b") || slot.HasUser("c") {
		t.Error("HasUser returned the wrong membership")
	}
}

package onboarding

import "github.com/Afrawles/onboardtracker/internal/asana"

// Milestone is the derived state of one onboarding step. A milestone whose
// subtask could not be found has all fields zero, which encodes as
// {"completed":false,"completed_at":null,"task_gid":null}.
type Milestone struct {
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completed_at"`
	TaskGID     *string `json:"task_gid"`
}

// StartDateStatus is completed once the stored start date is today or past.
type StartDateStatus struct {
	Milestone
	Date *asana.DateValue `json:"date"`
}

type Timeline struct {
	OfferAccepted    Milestone       `json:"offer_accepted"`
	MicrosoftAccount Milestone       `json:"microsoft_account"`
	SoftwareAccounts Milestone       `json:"software_accounts"`
	EquipmentReady   Milestone       `json:"equipment_ready"`
	StartDate        StartDateStatus `json:"start_date"`
}

// Record is the onboarding status of one person.
type Record struct {
	Name            string           `json:"name"`
	TaskGID         string           `json:"task_gid"`
	State           *string          `json:"state"`
	Position        *string          `json:"position"`
	StartDate       *asana.DateValue `json:"start_date"`
	Email           *string          `json:"email"`
	Phone           *string          `json:"phone"`
	ShippingAddress *string          `json:"shipping_address"`
	Timeline        Timeline         `json:"timeline_nodes"`
	IsRemote        bool             `json:"is_remote"`
}

// Milestones lists the timeline entries in display order.
func (r Record) Milestones() []NamedMilestone {
	return []NamedMilestone{
		{Key: "offer_accepted", Milestone: r.Timeline.OfferAccepted},
		{Key: "microsoft_account", Milestone: r.Timeline.MicrosoftAccount},
		{Key: "software_accounts", Milestone: r.Timeline.SoftwareAccounts},
		{Key: "equipment_ready", Milestone: r.Timeline.EquipmentReady},
		{Key: "start_date", Milestone: r.Timeline.StartDate.Milestone},
	}
}

type NamedMilestone struct {
	Key string
	Milestone
}

func strPtr(s string) *string {
	return &s
}

// Package content holds the static copy rendered on the landing page.
package content

import "github.com/okian/convention/internal/domain/model"

// SchedulePlaceholder is shown for a day without sessions.
const SchedulePlaceholder = "We are finalizing an impactful agenda for you. Stay tuned."

// Site is everything the landing page renders besides live data.
type Site struct {
	Title         string
	Scripture     string
	DateRange     string
	Venue         Venue
	Zones         []model.Zone
	About         About
	Schedule      []Day
	Copyright     string
	PitchPrompt   string
	PitchDeadline string
	// VideoLimit is the pitch video size shown in the requirements, e.g. "50MB".
	VideoLimit string
}

// Venue describes where the convention holds.
type Venue struct {
	Name     string
	Location string
	Blurb    string
	MapURL   string
}

// About is the "why attend" section.
type About struct {
	Heading    string
	Subheading string
	Paragraphs []string
}

// Day is one tab of the schedule.
type Day struct {
	Label    string    `json:"label"`
	Date     string    `json:"date"`
	Sessions []Session `json:"sessions"`
}

// Session is one agenda item.
type Session struct {
	Time   string `json:"time"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// Empty reports whether the day still has no agenda.
func (d Day) Empty() bool { return len(d.Sessions) == 0 }

// Default returns the built-in copy. The schedule has one empty tab per
// convention day until an agenda is configured.
func Default() Site {
	return Site{
		Title:     "NAAS Quad-Zonal Convention 2026",
		Scripture: `"But ye shall receive power, after that the Holy Ghost is come upon you: and ye shall be witnesses unto me..." Acts 1:8`,
		DateRange: "April 2nd - 7th, 2026",
		Venue: Venue{
			Name:     "Federal Government College",
			Location: "Enugu, Nigeria",
			Blurb:    "Experience the convergence of minds in the heart of the Coal City.",
			MapURL:   "https://www.google.com/maps/search/?api=1&query=Federal+Government+College+Enugu",
		},
		Zones: model.Zones,
		About: About{
			Heading:    "Why You Should Attend",
			Subheading: "YES: Young Empowered Students",
			Paragraphs: []string{
				"This convention is built on the pillars of Luke 2:52, tailored for spiritual, mental, physical, social and financial empowerment.",
				"This is a focused, practical experience designed to equip students with real skills and a pathway to earning while in school.",
			},
		},
		Schedule: []Day{
			{Label: "Day 1", Date: "2026-04-02"},
			{Label: "Day 2", Date: "2026-04-03"},
			{Label: "Day 3", Date: "2026-04-04"},
			{Label: "Day 4", Date: "2026-04-05"},
			{Label: "Day 5", Date: "2026-04-06"},
			{Label: "Day 6", Date: "2026-04-07"},
		},
		Copyright:     "© 2026 NAAS Quad-Zonal Convention. All Rights Reserved.",
		PitchPrompt:   "Enter your Unique Registration ID (UID) to verify your eligibility.",
		PitchDeadline: "15th March",
		VideoLimit:    "50MB",
	}
}

// WithSchedule returns s with its schedule replaced when days is non-empty.
func (s Site) WithSchedule(days []Day) Site {
	if len(days) > 0 {
		s.Schedule = days
	}
	return s
}

package domain

// SampleRecords returns the demo records shown in local-only mode before
// anything has been added.
func SampleRecords() []Record {
	return []Record{
		{
			ID:            "job-001",
			Company:       "Northwind Labs",
			Role:          "Frontend Engineer",
			WorkType:      WorkTypeRemote,
			City:          "Remote",
			Status:        StatusInterviewing,
			AppliedDate:   "2026-01-04",
			Source:        "Referral",
			Link:          "https://example.com/jobs/frontend-engineer",
			Notes:         "Panel interview scheduled for Feb 2.",
			Contact:       "maria.hunt@northwind.dev",
			LastContacted: "2026-01-22",
		},
		{
			ID:            "job-002",
			Company:       "Aurora Health",
			Role:          "Full Stack Developer",
			WorkType:      WorkTypeHybrid,
			City:          "Austin",
			Status:        StatusApplied,
			AppliedDate:   "2026-01-12",
			Source:        "LinkedIn",
			Notes:         "Follow up after 10 business days.",
			LastContacted: "2026-01-18",
		},
		{
			ID:            "job-003",
			Company:       "Crescent Ventures",
			Role:          "Product Engineer",
			WorkType:      WorkTypeOnSite,
			City:          "New York",
			Status:        StatusOffer,
			AppliedDate:   "2025-12-18",
			Source:        "Company site",
			Link:          "https://crescent.vc/careers",
			Notes:         "Offer received. Negotiating start date.",
			Contact:       "recruiting@crescent.vc",
			LastContacted: "2026-01-20",
		},
		{
			ID:            "job-004",
			Company:       "Nimbus AI",
			Role:          "UI Engineer",
			WorkType:      WorkTypeOnSite,
			City:          "San Francisco",
			Status:        StatusRejected,
			AppliedDate:   "2025-12-30",
			Source:        "AngelList",
			Notes:         "Rejected after take-home exercise.",
			LastContacted: "2026-01-10",
		},
	}
}

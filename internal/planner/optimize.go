package planner

import (
	"fmt"
	"sort"
)

// PerformanceMetrics are the observed numbers for one deployed
// campaign, submitted by the caller for analysis.
type PerformanceMetrics struct {
	CampaignID  string  `json:"campaign_id"`
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	Conversions int     `json:"conversions"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	TargetCPA   float64 `json:"target_cpa,omitempty"`
}

// CTR returns clicks per impression.
func (m PerformanceMetrics) CTR() float64 {
	if m.Impressions == 0 {
		return 0
	}
	return float64(m.Clicks) / float64(m.Impressions)
}

// CPA returns spend per conversion, or 0 with no conversions.
func (m PerformanceMetrics) CPA() float64 {
	if m.Conversions == 0 {
		return 0
	}
	return m.Spend / float64(m.Conversions)
}

// ROAS returns revenue per unit of spend.
func (m PerformanceMetrics) ROAS() float64 {
	if m.Spend == 0 {
		return 0
	}
	return m.Revenue / m.Spend
}

// Suggestion priorities, highest first.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Suggestion is one actionable optimization recommendation.
type Suggestion struct {
	CampaignID string `json:"campaign_id"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
	Priority   string `json:"priority"`
}

// OptimizationSummary aggregates metrics and suggestions across the
// submitted campaigns.
type OptimizationSummary struct {
	TotalCampaigns int          `json:"total_campaigns"`
	TotalSpend     float64      `json:"total_spend"`
	AverageCTR     float64      `json:"average_ctr"`
	AverageCPA     float64      `json:"average_cpa"`
	AverageROAS    float64      `json:"average_roas"`
	Suggestions    []Suggestion `json:"suggestions"`
}

// Thresholds for the optimization rules.
const (
	lowCTR       = 0.01
	strongROAS   = 3.0
	breakEven    = 1.0
	cpaOverrun   = 1.2 // 20% over target
	minSpendData = 1.0 // below this, too little delivery to judge
)

// Optimize applies the rule table to each campaign's metrics and
// returns a prioritized list of suggestions. It is stateless: every
// call judges only the metrics it is handed.
func Optimize(metrics []PerformanceMetrics) OptimizationSummary {
	summary := OptimizationSummary{TotalCampaigns: len(metrics)}

	var ctrSum, cpaSum, roasSum float64
	var cpaCount int
	for _, m := range metrics {
		summary.TotalSpend += m.Spend
		ctrSum += m.CTR()
		roasSum += m.ROAS()
		if m.Conversions > 0 {
			cpaSum += m.CPA()
			cpaCount++
		}
		summary.Suggestions = append(summary.Suggestions, analyze(m)...)
	}
	if len(metrics) > 0 {
		summary.AverageCTR = ctrSum / float64(len(metrics))
		summary.AverageROAS = roasSum / float64(len(metrics))
	}
	if cpaCount > 0 {
		summary.AverageCPA = cpaSum / float64(cpaCount)
	}

	rank := map[string]int{PriorityHigh: 0, PriorityMedium: 1, PriorityLow: 2}
	sort.SliceStable(summary.Suggestions, func(i, j int) bool {
		return rank[summary.Suggestions[i].Priority] < rank[summary.Suggestions[j].Priority]
	})
	return summary
}

func analyze(m PerformanceMetrics) []Suggestion {
	if m.Spend < minSpendData {
		return []Suggestion{{
			CampaignID: m.CampaignID,
			Action:     "broaden targeting or raise bids",
			Reason:     "campaign has barely spent, delivery is being throttled",
			Priority:   PriorityMedium,
		}}
	}

	var out []Suggestion

	if roas := m.ROAS(); m.Revenue > 0 || m.Conversions > 0 {
		switch {
		case roas < breakEven:
			out = append(out, Suggestion{
				CampaignID: m.CampaignID,
				Action:     "reduce budget or pause",
				Reason:     fmt.Sprintf("ROAS %.2f is below break-even", roas),
				Priority:   PriorityHigh,
			})
		case roas >= strongROAS:
			out = append(out, Suggestion{
				CampaignID: m.CampaignID,
				Action:     "increase budget",
				Reason:     fmt.Sprintf("ROAS %.2f leaves room to scale", roas),
				Priority:   PriorityMedium,
			})
		}
	}

	if ctr := m.CTR(); m.Impressions > 0 && ctr < lowCTR {
		out = append(out, Suggestion{
			CampaignID: m.CampaignID,
			Action:     "refresh creative variants",
			Reason:     fmt.Sprintf("CTR %.2f%% is below the 1%% floor, the copy is not landing", ctr*100),
			Priority:   PriorityHigh,
		})
	}

	if m.TargetCPA > 0 && m.Conversions > 0 {
		if cpa := m.CPA(); cpa > m.TargetCPA*cpaOverrun {
			out = append(out, Suggestion{
				CampaignID: m.CampaignID,
				Action:     "switch bidding to a cost cap at the target CPA",
				Reason:     fmt.Sprintf("CPA %.2f exceeds the %.2f target by more than 20%%", cpa, m.TargetCPA),
				Priority:   PriorityHigh,
			})
		}
	}

	if m.Clicks > 0 && m.Conversions == 0 {
		out = append(out, Suggestion{
			CampaignID: m.CampaignID,
			Action:     "review the landing page and conversion tracking",
			Reason:     fmt.Sprintf("%d clicks produced no conversions", m.Clicks),
			Priority:   PriorityMedium,
		})
	}

	if len(out) == 0 {
		out = append(out, Suggestion{
			CampaignID: m.CampaignID,
			Action:     "hold current settings",
			Reason:     "metrics are within healthy ranges",
			Priority:   PriorityLow,
		})
	}
	return out
}

package decision

// Badge names awarded for report quality and findings.
const (
	BadgeGold            = "gold_quality"
	BadgeSilver          = "silver_quality"
	BadgeBronze          = "bronze_quality"
	BadgeAnomalyDetector = "anomaly_detector"
	BadgeExpertDetector  = "expert_detector"
	BadgeCitizenScience  = "citizen_scientist"
)

// Quality badge thresholds. Exclusive tiers, highest wins.
const (
	goldBadgeMin   = 0.9
	silverBadgeMin = 0.8
	bronzeBadgeMin = 0.7
)

// urgencyBonus rewards reports that demand faster response.
var urgencyBonus = map[UrgencyLevel]int{
	UrgencyLow:      1,
	UrgencyMedium:   2,
	UrgencyHigh:     3,
	UrgencyCritical: 4,
}

// levels is the points ladder, ordered ascending by threshold.
var levels = []struct {
	Name   string
	Points int
}{
	{"beginner", 0},
	{"explorer", 50},
	{"detector", 150},
	{"expert", 300},
	{"master", 500},
}

// points computes the total reward for one processed report.
func (s *Synthesizer) points(confidence float64, anomaly bool, urgency UrgencyLevel) int {
	total := s.cfg.BasePoints
	if confidence >= s.cfg.HighConfidenceThreshold {
		total += s.cfg.HighConfidenceBonus
	}
	if anomaly {
		total += s.cfg.AnomalyBonus
	}
	return total + urgencyBonus[urgency]
}

// badges lists badges earned by this single report. The quality tiers are
// exclusive, the anomaly badges are additive, and every processed report
// earns the citizen scientist badge.
func badges(confidence float64, anomaly bool) []string {
	var earned []string
	switch {
	case confidence >= goldBadgeMin:
		earned = append(earned, BadgeGold)
	case confidence >= silverBadgeMin:
		earned = append(earned, BadgeSilver)
	case confidence >= bronzeBadgeMin:
		earned = append(earned, BadgeBronze)
	}
	if anomaly {
		earned = append(earned, BadgeAnomalyDetector)
		if confidence >= silverBadgeMin {
			earned = append(earned, BadgeExpertDetector)
		}
	}
	return append(earned, BadgeCitizenScience)
}

// Progress positions a points total on the level ladder. Progress within a
// level is linear between the bounding thresholds; at the top level it is
// pinned to 1.
func Progress(points int) LevelProgress {
	current := levels[0]
	idx := 0
	for i, lv := range levels {
		if points >= lv.Points {
			current, idx = lv, i
		}
	}

	if idx == len(levels)-1 {
		return LevelProgress{
			CurrentLevel: current.Name,
			NextLevel:    current.Name,
			Progress:     1.0,
			PointsToNext: 0,
		}
	}

	next := levels[idx+1]
	span := float64(next.Points - current.Points)
	return LevelProgress{
		CurrentLevel: current.Name,
		NextLevel:    next.Name,
		Progress:     float64(points-current.Points) / span,
		PointsToNext: next.Points - points,
	}
}

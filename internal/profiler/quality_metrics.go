package profiler

type QualityMetrics struct {
	TotalRecords    int
	EmptyPercentage float64
	MeanScore       float64
	DistinctRatio   float64
}

// CalculateQuality summarizes field population across the profiled records.
// DistinctRatio compares distinct multi-value items to all items.
func (p *Profiler) CalculateQuality() QualityMetrics {
	metrics := QualityMetrics{
		TotalRecords: p.RecordCount,
		MeanScore:    p.Scores.Mean,
	}
	if p.RecordCount == 0 || len(p.FieldStats) == 0 {
		return metrics
	}

	totalEmpty := 0
	for _, stats := range p.FieldStats {
		totalEmpty += stats.Empty
	}
	metrics.EmptyPercentage = float64(totalEmpty) / float64(p.RecordCount*len(p.FieldStats)) * 100

	totalDistinct, totalItems := 0, 0
	for _, stats := range p.FieldStats {
		if stats.Multi {
			totalDistinct += stats.Distinct
			totalItems += stats.Items
		}
	}
	if totalItems > 0 {
		metrics.DistinctRatio = float64(totalDistinct) / float64(totalItems)
	}

	return metrics
}

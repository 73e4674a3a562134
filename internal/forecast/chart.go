package forecast

// ChartSeries is the label/data pair a chart consumes.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// ChartPayload is the plain aggregated view of both streams.
type ChartPayload struct {
	Revenue ChartSeries `json:"revenue"`
	Expense ChartSeries `json:"expense"`
}

// ForecastSeries pairs the real and predicted views of one stream.
type ForecastSeries struct {
	Real      ChartSeries `json:"real"`
	Predicted ChartSeries `json:"predicted"`
}

// MetricsPayload carries per-stream metrics; nil encodes as null.
type MetricsPayload struct {
	Revenue *FitMetrics `json:"revenue"`
	Expense *FitMetrics `json:"expense"`
}

// OutcomePayload tells a consumer how each stream's forecast was produced.
type OutcomePayload struct {
	Revenue Outcome `json:"revenue"`
	Expense Outcome `json:"expense"`
}

// ForecastPayload is the forecast view of both streams.
type ForecastPayload struct {
	Revenue ForecastSeries `json:"revenue"`
	Expense ForecastSeries `json:"expense"`
	Metrics MetricsPayload `json:"metrics"`
	Outcome OutcomePayload `json:"outcome"`
}

// Labels formats bucket starts for the series' granularity.
func Labels(s AggregatedSeries) []string {
	layout := s.Period.LabelLayout()
	out := make([]string, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Start.Format(layout)
	}
	return out
}

// ToChartSeries projects an aggregated series.
func ToChartSeries(s AggregatedSeries) ChartSeries {
	return ChartSeries{Labels: Labels(s), Data: s.Totals()}
}

// AssembleChart builds the chart payload for both streams.
func AssembleChart(revenue, expense AggregatedSeries) ChartPayload {
	return ChartPayload{
		Revenue: ToChartSeries(revenue),
		Expense: ToChartSeries(expense),
	}
}

// AssembleForecast builds the forecast payload for both streams.
func AssembleForecast(revenue, expense ForecastResult) ForecastPayload {
	return ForecastPayload{
		Revenue: ForecastSeries{Real: ToChartSeries(revenue.Real), Predicted: ToChartSeries(revenue.Predicted)},
		Expense: ForecastSeries{Real: ToChartSeries(expense.Real), Predicted: ToChartSeries(expense.Predicted)},
		Metrics: MetricsPayload{Revenue: revenue.Metrics, Expense: expense.Metrics},
		Outcome: OutcomePayload{Revenue: revenue.Outcome, Expense: expense.Outcome},
	}
}

package domain

import "fmt"

// MetricKey selects which drill-down detail is shown.
type MetricKey string

const (
	MetricTotalUsers  MetricKey = "totalUsers"
	MetricProUsers    MetricKey = "proUsers"
	MetricFreeUsers   MetricKey = "freeUsers"
	MetricActiveUsers MetricKey = "activeUsers"
	MetricSignups     MetricKey = "signups"
)

// MetricKeys lists the selectable metrics in card order.
var MetricKeys = []MetricKey{
	MetricTotalUsers,
	MetricProUsers,
	MetricFreeUsers,
	MetricActiveUsers,
	MetricSignups,
}

var metricTitles = map[MetricKey]string{
	MetricTotalUsers:  "Total users",
	MetricProUsers:    "Pro users",
	MetricFreeUsers:   "Free users",
	MetricActiveUsers: "Active users (30d)",
	MetricSignups:     "Signups this month",
}

func ParseMetricKey(s string) (MetricKey, error) {
	k := MetricKey(s)
	if _, ok := metricTitles[k]; !ok {
		return "", fmt.Errorf("unknown metric %q", s)
	}
	return k, nil
}

func (k MetricKey) Title() string {
	return metricTitles[k]
}

package aging

// BucketRule maps a bucket name to an inclusive age range in days.
type BucketRule struct {
	Name string
	Min  int
	Max  int
}

// Bucket names in report column order.
const (
	BucketDay30          = "day_30"
	BucketDay60          = "day_60"
	BucketDay90          = "day_90"
	BucketDay120         = "day_120"
	BucketDay150         = "day_150"
	BucketDay180         = "day_180"
	BucketDay180AndAbove = "day_180_and_above"
)

const maxAge = int(^uint(0) >> 1)

// BucketRules is evaluated top to bottom, first match wins. Keeping the
// rules as an ordered list preserves that contract even if ranges are ever
// widened to overlap.
var BucketRules = []BucketRule{
	{Name: BucketDay30, Min: 0, Max: 30},
	{Name: BucketDay60, Min: 31, Max: 60},
	{Name: BucketDay90, Min: 61, Max: 90},
	{Name: BucketDay120, Min: 91, Max: 120},
	{Name: BucketDay150, Min: 121, Max: 150},
	{Name: BucketDay180, Min: 151, Max: 180},
	{Name: BucketDay180AndAbove, Min: 181, Max: maxAge},
}

// AssignBucket returns the first rule whose inclusive range contains
// ageDays. Negative ages (future-dated documents) match no bucket.
func AssignBucket(ageDays int) (string, bool) {
	for _, rule := range BucketRules {
		if ageDays >= rule.Min && ageDays <= rule.Max {
			return rule.Name, true
		}
	}
	return "", false
}

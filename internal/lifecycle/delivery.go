package lifecycle

import "time"

// BusinessDaysToDeliver is the promised turnaround.
const BusinessDaysToDeliver = 3

// EstimatedDelivery returns the order time moved forward by three
// business days in loc. The order day itself never counts, so a Friday
// order lands on Wednesday and a Monday order on Thursday.
func EstimatedDelivery(timestampMillis int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	d := time.UnixMilli(timestampMillis).In(loc)
	for added := 0; added < BusinessDaysToDeliver; {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return d
}

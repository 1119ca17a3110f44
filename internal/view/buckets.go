package view

import (
	"regexp"
	"strconv"
	"strings"
)

// hoursPattern matches a number carrying an hour unit: "50h", "3,5 horas", "60 hrs".
var hoursPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*h(?:oras?|ours?|rs?)?\b`)

type Bucket string

const (
	Bucket0to1h    Bucket = "0 e 1h"
	Bucket1to6h    Bucket = "1 e 6h"
	Bucket6to12h   Bucket = "6 e 12h"
	Bucket12to24h  Bucket = "12 e 24h"
	Bucket24to48h  Bucket = "24 e 48h"
	BucketAbove48h Bucket = "acima de 48h"
	BucketNoInfo   Bucket = "SEM INFORMAÇÃO"
)

// TimeBuckets is the chart order of the elapsed-time buckets.
var TimeBuckets = []Bucket{
	Bucket0to1h,
	Bucket1to6h,
	Bucket6to12h,
	Bucket12to24h,
	Bucket24to48h,
	BucketAbove48h,
}

// ClassifyRange maps free-text range values onto a bucket. Earlier rules win;
// the matching is approximate and several raw strings share a bucket.
func ClassifyRange(raw string) Bucket {
	r := strings.ToLower(strings.TrimSpace(raw))
	has := func(s string) bool { return strings.Contains(r, s) }

	switch {
	case has("48") && (has("acima") || has("above") || has(">") || has("+")):
		return BucketAbove48h
	case has("24") && has("48"):
		return Bucket24to48h
	case has("12") && has("24"):
		return Bucket12to24h
	case has("6") && has("12"):
		return Bucket6to12h
	case has("1") && has("6"):
		return Bucket1to6h
	case has("0") && has("1"):
		return Bucket0to1h
	}

	// single-token fallbacks, largest first
	switch {
	case has("48"):
		return BucketAbove48h
	case has("24"):
		return Bucket12to24h
	case has("12"):
		return Bucket6to12h
	case has("6"):
		return Bucket1to6h
	case has("1"):
		return Bucket0to1h
	}

	// text that names no known boundary but states hours, such as "50h atraso".
	// Other units ("3 dias") carry no hour information.
	if hours, ok := statedHours(r); ok {
		return bucketForHours(hours)
	}
	return BucketNoInfo
}

func statedHours(s string) (float64, bool) {
	m := hoursPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func bucketForHours(h float64) Bucket {
	switch {
	case h < 1:
		return Bucket0to1h
	case h < 6:
		return Bucket1to6h
	case h < 12:
		return Bucket6to12h
	case h < 24:
		return Bucket12to24h
	case h <= 48:
		return Bucket24to48h
	}
	return BucketAbove48h
}

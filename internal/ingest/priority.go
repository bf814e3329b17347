package ingest

import "strings"

// Source priority for canonical selection inside a dedup cluster. Lower
// number wins. Sources absent from the table rank below every listed one.
var sourcePriority = map[string]int{
	"yonhap":       1,
	"kbs":          2,
	"kid-chosun":   3,
	"easy-hankyul": 3,
	"hankyoreh":    4,
	"chosun":       5,
	"joongang":     5,
	"donga":        5,
	"sbs":          6,
	"mbc":          6,
}

const unrankedPriority = 1 << 20

func priorityFor(sourceKey string) int {
	key := strings.ToLower(strings.TrimSpace(sourceKey))
	if p, ok := sourcePriority[key]; ok {
		return p
	}
	return unrankedPriority
}

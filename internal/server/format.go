package server

import (
	"strconv"

	"github.com/KaramelBytes/spendboard/internal/catalog"
	"github.com/KaramelBytes/spendboard/internal/dashboard"
)

func catalogSelection(sel dashboard.Selection) catalog.Selection {
	return catalog.Selection{Dataset: sel.Dataset, Column: sel.Column}
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

func fmtPtr(v any) string {
	switch p := v.(type) {
	case *float64:
		if p == nil {
			return "null"
		}
		return trimFloat(*p)
	case *int:
		if p == nil {
			return "null"
		}
		return strconv.Itoa(*p)
	case *string:
		if p == nil {
			return "null"
		}
		return *p
	default:
		return ""
	}
}

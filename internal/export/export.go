// Package export renders leads as CSV text or an XLSX workbook.
package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-dashboard/internal/model"
)

// Header is the export column order.
var Header = []string{
	"Search Term", "State", "Page Name", "Page ID", "Ad Type", "Spend Range",
	"Impressions", "Total Reach", "Platforms", "Start Date", "Stop Date",
	"Duration Days", "FB Link", "Ad Link", "Address", "Website", "Phone",
	"Lead Score", "Lead Priority",
}

// SheetName names the single XLSX sheet.
const SheetName = "Leads"

// Row returns the export fields of l in Header order.
func Row(l model.Lead) []string {
	return []string{
		l.SearchTerm,
		l.State,
		l.PageName,
		l.PageID,
		l.AdType,
		l.SpendRange,
		l.Impressions,
		strconv.FormatInt(l.TotalReach, 10),
		l.Platforms,
		l.StartDate,
		deref(l.StopDate),
		deref(l.DurationDays),
		l.FBLink,
		l.AdLink,
		l.Address,
		l.Website,
		l.Phone,
		strconv.FormatFloat(l.LeadScore, 'f', -1, 64),
		l.LeadPriority,
	}
}

// CSV renders leads with a header line. Every field is quoted, embedded
// quotes are doubled and lines are joined with "\n" without a trailing
// newline.
func CSV(leads []model.Lead) string {
	var b strings.Builder
	writeLine(&b, Header)
	for _, l := range leads {
		b.WriteByte('\n')
		writeLine(&b, Row(l))
	}
	return b.String()
}

func writeLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

// XLSX writes leads to w as a single-sheet workbook. Reach and score are
// numeric cells.
func XLSX(w io.Writer, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetString(h)
	}

	for _, l := range leads {
		row := sheet.AddRow()
		for i, v := range Row(l) {
			cell := row.AddCell()
			switch Header[i] {
			case "Total Reach":
				cell.SetInt64(l.TotalReach)
			case "Lead Score":
				cell.SetFloat(l.LeadScore)
			default:
				cell.SetString(v)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

// ParseIDs parses a comma-separated id list such as "1,2,3". Blank and
// non-numeric entries are skipped.
func ParseIDs(s string) []int {
	var ids []int
	for part := range strings.SplitSeq(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Subset keeps the leads whose id is in ids, in their original order. An
// empty id set keeps everything.
func Subset(leads []model.Lead, ids []int) []model.Lead {
	if len(ids) == 0 {
		out := make([]model.Lead, len(leads))
		copy(out, leads)
		return out
	}
	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]model.Lead, 0, len(ids))
	for _, l := range leads {
		if _, ok := want[l.ID]; ok {
			out = append(out, l)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

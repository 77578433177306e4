// Package audit summarizes who sent the mail a cleanup would remove.
package audit

import (
	"sort"

	gc "github.com/joshsymonds/labelsweep/internal/gmail"
)

// SenderStat ranks noisy sender domains.
type SenderStat struct {
	Domain         string `json:"domain"`
	Count          int    `json:"count"`
	PreviewSubject string `json:"preview_subject"`
}

// Report is the sender breakdown of one listing.
type Report struct {
	Total      int          `json:"total"`
	Unknown    int          `json:"unknown"` // messages without a parsable From
	TopSenders []SenderStat `json:"top_senders"`
}

// Senders ranks the From domains of metas, keeping the topN largest.
// A non-positive topN keeps every domain.
func Senders(metas []gc.MessageMeta, topN int) Report {
	rep := Report{Total: len(metas)}
	senders := map[string]*SenderStat{}
	for _, meta := range metas {
		domain := domainOf(meta.Headers["From"])
		if domain == "" {
			rep.Unknown++
			continue
		}
		st := senders[domain]
		if st == nil {
			st = &SenderStat{Domain: domain}
			senders[domain] = st
		}
		st.Count++
		if st.PreviewSubject == "" {
			st.PreviewSubject = meta.Headers["Subject"]
		}
	}
	rep.TopSenders = rankSenders(senders, topN)
	return rep
}

func rankSenders(m map[string]*SenderStat, topN int) []SenderStat {
	slice := make([]SenderStat, 0, len(m))
	for _, st := range m {
		slice = append(slice, *st)
	}
	sort.Slice(slice, func(i, j int) bool {
		if slice[i].Count == slice[j].Count {
			return slice[i].Domain < slice[j].Domain
		}
		return slice[i].Count > slice[j].Count
	})
	if topN > 0 && topN < len(slice) {
		slice = slice[:topN]
	}
	return slice
}

package audit

import (
	"reflect"
	"testing"

	"github.com/joshsymonds/labelsweep/internal/gmail"
)

func meta(id, from, subject string) gmail.MessageMeta {
	return gmail.MessageMeta{ID: gmail.MessageID(id), Headers: map[string]string{"From": from, "Subject": subject}}
}

func TestSendersRanksDomains(t *testing.T) {
	metas := []gmail.MessageMeta{
		meta("1", "Shop <deals@Shop.example.com>", "50% off"),
		meta("2", "deals@shop.example.com", "Last chance"),
		meta("3", "\"News\" <news@another.org>", "Weekly digest"),
		meta("4", "", "no sender"),
		meta("5", "alerts@zeta.io", "Alert"),
	}
	rep := Senders(metas, 2)
	if rep.Total != 5 || rep.Unknown != 1 {
		t.Fatalf("unexpected totals %+v", rep)
	}
	want := []SenderStat{
		{Domain: "shop.example.com", Count: 2, PreviewSubject: "50% off"},
		{Domain: "another.org", Count: 1, PreviewSubject: "Weekly digest"},
	}
	if !reflect.DeepEqual(rep.TopSenders, want) {
		t.Fatalf("got %+v want %+v", rep.TopSenders, want)
	}
	if all := Senders(metas, 0); len(all.TopSenders) != 3 {
		t.Fatalf("topN=0 should keep every domain, got %d", len(all.TopSenders))
	}
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user@example.com", "example.com"},
		{"Name <User@Example.COM>", "example.com"},
		{"broken <user@example.net", "example.net"},
		{"no-at-sign", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(tc.in, func(t *testing.T) {
			if got := domainOf(tc.in); got != tc.want {
				t.Fatalf("domainOf(%q) = %q want %q", tc.in, got, tc.want)
			}
		})
	}
}

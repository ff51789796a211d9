package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/telekom/idctl/pkg/idp"
	"github.com/telekom/idctl/pkg/store"
)

func WriteAccountTable(w io.Writer, entries []store.Entry) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tREALM\tPROVIDER\tEXPIRES")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Realm, e.BaseURL, formatTime(e.Tokens.ExpiresAt))
	}
	_ = tw.Flush()
}

func WriteAccountTableWide(w io.Writer, entries []store.Entry) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tSUBJECT\tEMAIL\tREALM\tPROVIDER\tREFRESHABLE\tEXPIRES\tHASH")
	for _, e := range entries {
		subject, email := "-", "-"
		if e.AuthInfo != nil {
			if e.AuthInfo.Subject != "" {
				subject = e.AuthInfo.Subject
			}
			if e.AuthInfo.Email != "" {
				email = e.AuthInfo.Email
			}
		}
		refreshable := "no"
		if e.Tokens.RefreshToken != "" {
			refreshable = "yes"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Name, subject, email, e.Realm, e.BaseURL, refreshable, formatTime(e.Tokens.ExpiresAt), shortHash(e.Hash))
	}
	_ = tw.Flush()
}

// WriteServerInfoTable renders a discovery document as key/value rows.
func WriteServerInfoTable(w io.Writer, doc *idp.DiscoveryDocument) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Issuer:\t%s\n", doc.Issuer)
	_, _ = fmt.Fprintf(tw, "Authorization endpoint:\t%s\n", doc.AuthorizationEndpoint)
	_, _ = fmt.Fprintf(tw, "Token endpoint:\t%s\n", doc.TokenEndpoint)
	if doc.UserInfoEndpoint != "" {
		_, _ = fmt.Fprintf(tw, "Userinfo endpoint:\t%s\n", doc.UserInfoEndpoint)
	}
	if doc.EndSessionEndpoint != "" {
		_, _ = fmt.Fprintf(tw, "Logout endpoint:\t%s\n", doc.EndSessionEndpoint)
	}
	if doc.JWKSURI != "" {
		_, _ = fmt.Fprintf(tw, "JWKS:\t%s\n", doc.JWKSURI)
	}
	if len(doc.GrantTypesSupported) > 0 {
		_, _ = fmt.Fprintf(tw, "Grant types:\t%s\n", strings.Join(doc.GrantTypesSupported, ", "))
	}
	if len(doc.ResponseTypesSupported) > 0 {
		_, _ = fmt.Fprintf(tw, "Response types:\t%s\n", strings.Join(doc.ResponseTypesSupported, ", "))
	}
	_ = tw.Flush()
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}

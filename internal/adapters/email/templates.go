package email

import (
	"fmt"
	"html"
)

// NewsletterWelcome builds the confirmation email sent after a newsletter
// signup. The unsubscribe link is required in every newsletter email.
// PRE: to is a validated email address, unsubscribeURL is absolute
func NewsletterWelcome(to, unsubscribeURL string) SendRequest {
	body := fmt.Sprintf(`<h1>Welcome to the TuneLingo newsletter</h1>
<p>You'll hear from us when new songs and activities land, plus the
occasional teaching tip. No more than a couple of emails a month.</p>
<p>Didn't sign up? <a href="%s">Unsubscribe</a> and you won't hear from
us again.</p>`, html.EscapeString(unsubscribeURL))

	return SendRequest{
		To:      []string{to},
		Subject: "Welcome to the TuneLingo newsletter",
		HTML:    body,
	}
}

// MemberWelcome builds the email sent after a member's first sign-in.
// PRE: name may be empty, in which case the greeting is generic
func MemberWelcome(to, name, catalogURL string) SendRequest {
	greeting := "Welcome to TuneLingo!"
	if name != "" {
		greeting = fmt.Sprintf("Welcome to TuneLingo, %s!", html.EscapeString(name))
	}
	body := fmt.Sprintf(`<h1>%s</h1>
<p>Your account is ready. Head to the <a href="%s">activity catalog</a>
to start learning English through music.</p>
<p>Free activities are open right away. A subscription unlocks the full
library of songs, clips and vocals-only tracks.</p>`,
		greeting, html.EscapeString(catalogURL))

	return SendRequest{
		To:      []string{to},
		Subject: greeting,
		HTML:    body,
	}
}

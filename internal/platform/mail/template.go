// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Purpose selects the wording of a one-time-code email.
type Purpose string

const (
	PurposeVerify Purpose = "verify"
	PurposeReset  Purpose = "reset"
)

var titleCaser = cases.Title(language.English)

// OTPMessage renders the email carrying a one-time code.
func OTPMessage(name, email, code string, purpose Purpose, ttl time.Duration) Message {
	greeting := "there"
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		greeting = titleCaser.String(trimmed)
	}

	subject := "Verify your FamVault account"
	intro := "Use the code below to verify your email address."
	if purpose == PurposeReset {
		subject = "Reset your FamVault password"
		intro = "Use the code below to reset your password. If you did not ask for this, you can ignore this email."
	}

	body := fmt.Sprintf(`<div style="font-family:sans-serif">
<p>Hi %s,</p>
<p>%s</p>
<p style="font-size:24px;letter-spacing:4px"><strong>%s</strong></p>
<p>This code expires in %d minutes.</p>
</div>`, html.EscapeString(greeting), intro, code, int(ttl.Minutes()))

	return Message{To: email, Subject: subject, HTML: body}
}

// contextWithTimeout narrows ctx to timeout unless it already expires sooner.
func contextWithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

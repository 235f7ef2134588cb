package service

import (
	"fmt"
	"time"

	"github.com/dreamwise/dreamwise/internal/model"
)

func verificationCodeEmailTemplate(code string, purpose model.Purpose, ttl time.Duration, appName string) (string, string) {
	var subject, intro string
	switch purpose {
	case model.PurposePasswordReset:
		subject = fmt.Sprintf("Reset your %s password", appName)
		intro = "You asked to reset your password. Enter this code to choose a new one:"
	case model.PurposePasswordChange:
		subject = fmt.Sprintf("Confirm your %s password change", appName)
		intro = "You asked to change your password. Enter this code to confirm:"
	default:
		subject = fmt.Sprintf("Your %s verification code", appName)
		intro = "Welcome! Enter this code to finish creating your account:"
	}

	body := fmt.Sprintf(`%s

    %s

This code expires in %d minutes and can only be used once.

If you didn't request this, you can safely ignore this email.

Sweet dreams,
The %s Team`, intro, code, int(ttl.Minutes()), appName)

	return subject, body
}

func welcomeEmailTemplate(username, appURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Start exploring the dream dictionary and keep a journal of what you see at night:
%s

Sweet dreams,
The %s Team`, username, appURL, appName)

	return subject, body
}

func passwordChangedEmailTemplate(username, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s password was changed", appName)
	body := fmt.Sprintf(`Hi %s,

The password for your account was just changed.

If this wasn't you, reset your password right away or contact support.

The %s Team`, username, appName)

	return subject, body
}

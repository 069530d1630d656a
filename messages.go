package goRecover

import "fmt"

// MessageCatalog maps error codes to user-facing text. Missing entries fall
// back to the English defaults.
type MessageCatalog map[ErrorCode]string

var defaultMessages = MessageCatalog{
	CodeEmailFormatInvalid:          "The email address is not valid.",
	CodeAccountNotFound:             "No account is registered with this email address.",
	CodeFederatedAccountCannotReset: "This account is managed by an external directory. Reset the password there.",
	CodeCooldownActive:              "A reset email was sent recently. Try again in %d seconds.",
	CodeInvalidOrExpiredToken:       "The reset link is invalid or has expired.",
	CodePasswordPolicyViolation:     "The new password does not meet the password policy.",
	CodeNotificationFailed:          "The reset email could not be sent. Try again later.",
	CodePersistenceFailed:           "The password could not be saved. Try again later.",
}

// DefaultMessages returns a copy of the English catalog.
func DefaultMessages() MessageCatalog {
	out := make(MessageCatalog, len(defaultMessages))
	for k, v := range defaultMessages {
		out[k] = v
	}
	return out
}

func (c MessageCatalog) lookup(code ErrorCode) string {
	if msg, ok := c[code]; ok {
		return msg
	}
	return defaultMessages[code]
}

// Message renders the text for code. Policy violations use the validator's own
// reason when one is given.
func (c MessageCatalog) Message(code ErrorCode, detail string, cooldownSeconds int64) string {
	switch code {
	case "":
		return ""
	case CodeCooldownActive:
		return fmt.Sprintf(c.lookup(code), cooldownSeconds)
	case CodePasswordPolicyViolation:
		if detail != "" {
			return detail
		}
	}
	return c.lookup(code)
}

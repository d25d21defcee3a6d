package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrPasswordMismatch is returned when the confirmation entry differs.
var ErrPasswordMismatch = errors.New("passwords do not match")

// Password asks for a masked password.
func Password(label string) (string, error) {
	result, err := (&promptui.Prompt{Label: label, Mask: '*'}).Run()
	return result, wrapError(err)
}

// PasswordWithConfirmation asks for a password twice, enforcing a minimum
// length on the first entry.
func PasswordWithConfirmation(label, confirmLabel string, minLength int) (string, error) {
	first := promptui.Prompt{
		Label:    label,
		Mask:     '*',
		Validate: minLengthValidator(minLength),
	}
	password, err := first.Run()
	if err != nil {
		return "", wrapError(err)
	}

	confirm, err := Password(confirmLabel)
	if err != nil {
		return "", err
	}
	if confirm != password {
		return "", ErrPasswordMismatch
	}
	return password, nil
}

func minLengthValidator(n int) func(string) error {
	return func(input string) error {
		if len(input) < n {
			return fmt.Errorf("password must be at least %d characters", n)
		}
		return nil
	}
}

package cli

import (
	"context"
	"errors"
	"os"

	"github.com/enyard/portal/internal/client/api"
	"github.com/enyard/portal/internal/client/pipeline"
)

// Waitlist prompts for the waiting-list form and submits it. Without a
// session the form is saved locally and submitted automatically after the
// next successful login.
func (a *App) Waitlist(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	company, err := getSimpleText(a.reader, "Enter company (optional)", os.Stdout)
	if err != nil {
		return err
	}

	phone, err := getSimpleText(a.reader, "Enter phone (optional)", os.Stdout)
	if err != nil {
		return err
	}

	err = a.pipe.SubmitWaitingList(ctx, api.WaitingListRequest{
		Name:    name,
		Email:   email,
		Company: company,
		Phone:   phone,
	})
	if errors.Is(err, pipeline.ErrLoginRequired) {
		printlnFn("Your form has been saved. Please login or register;")
		printlnFn("it will be submitted automatically afterwards.")
		return nil
	}
	if err != nil {
		return err
	}

	printlnFn("You're on the waiting list!")
	return nil
}

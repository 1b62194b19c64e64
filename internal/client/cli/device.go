package cli

import "context"

// ResetDevice discards the stored device identity and generates a fresh one.
// The backend will treat the next login as coming from a new device.
func (a *App) ResetDevice(ctx context.Context) error {
	id, err := a.device.Reset(ctx)
	if err != nil {
		return err
	}
	printlnFn("New device id:", id)
	return nil
}

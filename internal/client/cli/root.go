package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/enyard/portal/internal/client/session"
)

func (a *App) getStatus() string {
	s := ""
	if user := a.store.User(); user != nil {
		s = user.DisplayName() + " "
	}
	switch a.store.State() {
	case session.StateVerified:
		s += "verified"
	case session.StateOptimistic:
		s += "restored"
	default:
		s += "guest"
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Root(ctx context.Context) {

	printlnFn("Welcome to the portal CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	runREPL(ctx, a, a.getStatus, scanner)
}

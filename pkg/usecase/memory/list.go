package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/csfalcao/magis/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// List prints the owner's active memories, most recent first
func (u *UseCase) List(ctx context.Context, ownerID string, contextFilter string) ([]*model.Memory, error) {
	if ownerID == "" {
		return nil, goerr.New("owner ID is required")
	}

	memories, err := u.repo.ListActiveMemories(ctx, ownerID, contextFilter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memories")
	}

	if len(memories) == 0 {
		fmt.Fprintln(u.output, "No memories stored")
		return memories, nil
	}

	for _, m := range memories {
		fmt.Fprintf(u.output, "%s  [%s] imp=%d  %s\n",
			m.CreatedAt.Format("2006-01-02"), m.Classification, m.Importance, m.Content)
		if len(m.Keywords) > 0 {
			fmt.Fprintf(u.output, "    keywords: %s\n", strings.Join(m.Keywords, ", "))
		}
		fmt.Fprintf(u.output, "    id: %s\n", m.ID)
	}

	return memories, nil
}

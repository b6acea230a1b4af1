package mem

import (
	"context"
	"testing"

	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/testutil"
)

func TestStore(t *testing.T) {
	testutil.ReadWrite(context.Background(), t, New())
}

func TestAllHandles(t *testing.T) {
	testutil.AllHandles(context.Background(), t, func() bookmark.Store { return New() })
}

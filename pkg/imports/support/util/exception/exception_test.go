package exception_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tigerroll/reimport/pkg/imports/support/util/exception"

	"github.com/stretchr/testify/assert"
)

func TestImportError_Classification(t *testing.T) {
	nf := exception.NewNotFound("manager", "abc-123")
	assert.True(t, exception.IsNotFound(nf))
	assert.False(t, exception.IsProcessing(nf))
	assert.Contains(t, nf.Error(), "abc-123")

	pnf := exception.NewProcessorNotFound("registry", "customer_data", []string{"orders", "invoices"})
	assert.True(t, exception.IsProcessorNotFound(pnf))
	assert.Contains(t, pnf.Error(), "customer_data")
	assert.Contains(t, pnf.Error(), "orders, invoices")

	v := exception.NewValidation("manager", "batch must contain at least one item", nil)
	assert.True(t, exception.IsValidation(v))

	p := exception.NewProcessing("manager", "batch validation failed", nil)
	assert.True(t, exception.IsProcessing(p))
}

func TestImportError_WrappedErrorSurvivesChain(t *testing.T) {
	cause := errors.New("connection refused")
	inner := exception.NewProcessing("repository", "failed to persist batch", cause)
	outer := fmt.Errorf("run aborted: %w", inner)

	assert.True(t, exception.IsProcessing(outer))
	assert.True(t, errors.Is(outer, cause))

	var ie *exception.ImportError
	assert.True(t, errors.As(outer, &ie))
	assert.Equal(t, "repository", ie.Module)
}

func TestExtractMessage(t *testing.T) {
	assert.Equal(t, "", exception.ExtractMessage(nil))
	assert.Equal(t, "plain", exception.ExtractMessage(errors.New("plain")))

	ie := exception.NewProcessing("manager", "batch processing aborted at item 3", errors.New("boom"))
	assert.Equal(t, "batch processing aborted at item 3: boom", exception.ExtractMessage(ie))

	bare := exception.NewValidation("manager", "empty item list", nil)
	assert.Equal(t, "empty item list", exception.ExtractMessage(bare))
}

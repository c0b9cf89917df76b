package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the gateway error primitives.
//
// These are used at every trust boundary in the request pipeline, so the
// invariants "wrapped gateway errors preserve the original code" and
// "errors.Is matches by code" need explicit coverage.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeForbidden, Message: "role not permitted"}
		s.Equal("role not permitted", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeForbidden}
		s.Equal("forbidden", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	inner := errors.New("connection refused")
	err := Wrap(inner, CodeUpstreamUnavailable, "upstream call failed")

	s.ErrorIs(err, inner)
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	err := New(CodeUnauthorized, "token expired")

	s.ErrorIs(err, &Error{Code: CodeUnauthorized})
	s.NotErrorIs(err, &Error{Code: CodeForbidden})
}

func (s *DomainErrorsSuite) TestWrapPreservesOriginalCode() {
	inner := New(CodeUnauthorized, "bad signature")
	wrapped := Wrap(inner, CodeInternal, "verification step failed")

	s.True(HasCode(wrapped, CodeUnauthorized),
		"wrapping must not launder the original code")
	s.False(HasCode(wrapped, CodeInternal))
}

func (s *DomainErrorsSuite) TestWrapPlainError() {
	inner := fmt.Errorf("dial tcp: timeout")
	wrapped := Wrap(inner, CodeUpstreamUnavailable, "forward failed")

	s.True(HasCode(wrapped, CodeUpstreamUnavailable))
	s.ErrorIs(wrapped, inner)
}

func (s *DomainErrorsSuite) TestHasCodeOnNonGatewayError() {
	s.False(HasCode(errors.New("plain"), CodeInternal))
	s.False(HasCode(nil, CodeInternal))
}

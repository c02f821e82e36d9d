package engine_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitopen/internal/cliio"
	"github.com/skaphos/gitopen/internal/engine"
	"github.com/skaphos/gitopen/internal/gitx"
	"github.com/skaphos/gitopen/internal/remote"
	"github.com/skaphos/gitopen/internal/weburl"
)

var _ = Describe("Classify", func() {
	DescribeTable("maps errors to problem kinds",
		func(err error, kind engine.ProblemKind) {
			Expect(engine.Classify(err).Kind).To(Equal(kind))
		},
		Entry("nil", nil, engine.ProblemNone),
		Entry("no selection", cliio.ErrNoSelection, engine.ProblemNoSelection),
		Entry("not a repo", fmt.Errorf("wrap: %w", gitx.ErrNotARepository), engine.ProblemNotARepository),
		Entry("no remote", fmt.Errorf("%w: remote %q", gitx.ErrNoRemote, "origin"), engine.ProblemNoRemote),
		Entry("malformed", fmt.Errorf("%w: empty URL", remote.ErrMalformedRemoteURL), engine.ProblemMalformedRemoteURL),
		Entry("unsupported", &weburl.UnsupportedProviderError{BaseURL: "https://git.example.com"}, engine.ProblemUnsupportedProvider),
		Entry("selection required", engine.ErrSelectionRequired, engine.ProblemSelectionRequired),
		Entry("detached", gitx.ErrDetachedHead, engine.ProblemDetachedHead),
		Entry("timeout", &gitx.CommandError{Command: "git remote", Err: context.DeadlineExceeded}, engine.ProblemTimeout),
		Entry("git failure", &gitx.CommandError{Command: "git config", Err: errors.New("exit status 128")}, engine.ProblemGit),
		Entry("other", errors.New("boom"), engine.ProblemUnknown),
	)

	It("treats a declined prompt as silent", func() {
		Expect(engine.Classify(cliio.ErrNoSelection).Silent()).To(BeTrue())
		Expect(engine.Classify(gitx.ErrNoRemote).Silent()).To(BeFalse())
	})

	It("suggests a domain mapping for recognisable hosts", func() {
		p := engine.Classify(&weburl.UnsupportedProviderError{BaseURL: "https://gitlab.internal.example.com:8443"})
		Expect(p.Message).To(Equal("Unknown Git provider: gitlab.internal.example.com:8443 (Looks like GitLab)"))
		Expect(p.Hint).To(Equal("map the host with: gitopen domains set gitlab.internal.example.com gitlab"))
	})

	It("lists provider choices when the host gives no clue", func() {
		p := engine.Classify(&weburl.UnsupportedProviderError{BaseURL: "https://code.example.com"})
		Expect(p.Message).To(Equal("Unknown Git provider: code.example.com"))
		Expect(p.Hint).To(ContainSubstring("gitopen domains set code.example.com <github|gitlab|bitbucket|azure>"))
	})

	It("names the git failure class", func() {
		p := engine.Classify(&gitx.CommandError{Op: "read remote url", Command: "git config", Stderr: "Permission denied (publickey)", Err: errors.New("exit status 128")})
		Expect(p.Message).To(HavePrefix("Git error (auth): "))
		Expect(p.Message).NotTo(ContainSubstring("publickey"))
	})
})

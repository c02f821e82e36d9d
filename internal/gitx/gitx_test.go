package gitx_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitopen/internal/gitx"
	"github.com/skaphos/gitopen/internal/model"
)

var errNotRepo = errors.New("fatal: not a git repository (or any of the parent directories): .git")

var _ = Describe("GitRunner.Run", func() {
	var runner *gitx.GitRunner

	BeforeEach(func() {
		runner = &gitx.GitRunner{}
	})

	It("runs git version successfully", func() {
		out, err := runner.Run(context.Background(), "", "version")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("git version"))
	})

	It("errors for nonexistent directory", func() {
		_, err := runner.Run(context.Background(), "/nonexistent/path/xyz", "status")
		Expect(err).To(HaveOccurred())
		var cmdErr *gitx.CommandError
		Expect(errors.As(err, &cmdErr)).To(BeTrue())
		Expect(cmdErr.Command).To(Equal("git status"))
	})

	It("respects context cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := runner.Run(ctx, "", "version")
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("reports a missing binary as a command error", func() {
		missing := &gitx.GitRunner{GitBin: "/nonexistent/bin/git-xyz"}
		_, err := missing.Run(context.Background(), "", "version")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("IsRepo", func() {
	It("returns true for a valid repo", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --is-inside-work-tree": {Output: "true"},
		}}
		ok, err := gitx.IsRepo(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("returns false without error outside a work tree", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --is-inside-work-tree": {Err: errNotRepo},
		}}
		ok, err := gitx.IsRepo(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("returns false when output is not 'true'", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --is-inside-work-tree": {Output: "false"},
		}}
		ok, err := gitx.IsRepo(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("surfaces genuine failures with operation context", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --is-inside-work-tree": {Err: &gitx.CommandError{Command: "git rev-parse", Err: errors.New("permission denied")}},
		}}
		_, err := gitx.IsRepo(context.Background(), mock, "/repo")
		Expect(err).To(MatchError(ContainSubstring("check repository: git rev-parse")))
	})
})

var _ = Describe("Remotes", func() {
	It("returns all remotes with URLs", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:remote":                  {Output: "origin\nupstream"},
			"/repo:remote get-url origin":   {Output: "https://github.com/org/repo.git"},
			"/repo:remote get-url upstream": {Output: "https://github.com/other/repo.git"},
		}}
		remotes, err := gitx.Remotes(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(remotes).To(Equal([]model.Remote{
			{Name: "origin", URL: "https://github.com/org/repo.git"},
			{Name: "upstream", URL: "https://github.com/other/repo.git"},
		}))
	})

	It("returns nil for no remotes", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:remote": {Output: ""},
		}}
		remotes, err := gitx.Remotes(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(remotes).To(BeNil())
	})

	It("skips remotes whose URL cannot be fetched", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:remote":                {Output: "origin\nbad"},
			"/repo:remote get-url origin": {Output: "https://github.com/org/repo.git"},
			"/repo:remote get-url bad":    {Err: errors.New("no such remote")},
		}}
		remotes, err := gitx.Remotes(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(remotes).To(HaveLen(1))
		Expect(remotes[0].Name).To(Equal("origin"))
	})
})

var _ = Describe("RemoteURL", func() {
	It("reads the named remote", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:config --get remote.origin.url": {Output: "git@github.com:org/repo.git\n"},
		}}
		url, err := gitx.RemoteURL(context.Background(), mock, "/repo", "origin")
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("git@github.com:org/repo.git"))
	})

	It("picks the primary remote when no name is given", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:remote":                          {Output: "upstream\nfork"},
			"/repo:remote get-url upstream":         {Output: "https://github.com/up/repo"},
			"/repo:remote get-url fork":             {Output: "https://github.com/me/repo"},
			"/repo:config --get remote.fork.url":    {Output: "https://github.com/me/repo"},
			"/repo:config --get remote.upstream.url": {Output: "https://github.com/up/repo"},
		}}
		url, err := gitx.RemoteURL(context.Background(), mock, "/repo", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("https://github.com/me/repo"))
	})

	It("returns ErrNoRemote when the key is unset", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:config --get remote.origin.url": {Err: errors.New("exit status 1")},
		}}
		_, err := gitx.RemoteURL(context.Background(), mock, "/repo", "origin")
		Expect(errors.Is(err, gitx.ErrNoRemote)).To(BeTrue())
	})

	It("returns ErrNoRemote when the repo has no remotes", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:remote": {Output: ""},
		}}
		_, err := gitx.RemoteURL(context.Background(), mock, "/repo", "")
		Expect(errors.Is(err, gitx.ErrNoRemote)).To(BeTrue())
	})

	It("returns ErrNotARepository outside a repo", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/tmp:config --get remote.origin.url": {Err: errNotRepo},
		}}
		_, err := gitx.RemoteURL(context.Background(), mock, "/tmp", "origin")
		Expect(errors.Is(err, gitx.ErrNotARepository)).To(BeTrue())
	})
})

var _ = Describe("CurrentBranch", func() {
	It("returns branch name for attached HEAD", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:symbolic-ref --quiet --short HEAD": {Output: "feature/login"},
		}}
		branch, err := gitx.CurrentBranch(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(branch).To(Equal("feature/login"))
	})

	It("returns ErrDetachedHead for detached HEAD", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:symbolic-ref --quiet --short HEAD": {Err: errors.New("exit status 1")},
		}}
		_, err := gitx.CurrentBranch(context.Background(), mock, "/repo")
		Expect(err).To(MatchError(gitx.ErrDetachedHead))
	})

	It("returns ErrNotARepository outside a repo", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/tmp:symbolic-ref --quiet --short HEAD": {Err: errNotRepo},
		}}
		_, err := gitx.CurrentBranch(context.Background(), mock, "/tmp")
		Expect(err).To(MatchError(gitx.ErrNotARepository))
	})

	It("does not mistake a timeout for a detached HEAD", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:symbolic-ref --quiet --short HEAD": {Err: context.DeadlineExceeded},
		}}
		_, err := gitx.CurrentBranch(context.Background(), mock, "/repo")
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		Expect(errors.Is(err, gitx.ErrDetachedHead)).To(BeFalse())
	})
})

var _ = Describe("DefaultBranch", func() {
	It("reads the remote HEAD symbolic ref", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:symbolic-ref --quiet --short refs/remotes/origin/HEAD": {Output: "origin/develop"},
		}}
		branch, err := gitx.DefaultBranch(context.Background(), mock, "/repo", "origin", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(branch).To(Equal("develop"))
	})

	It("probes local main then master", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:symbolic-ref --quiet --short refs/remotes/origin/HEAD": {Err: errors.New("exit status 1")},
			"/repo:rev-parse --verify --quiet refs/heads/main":            {Err: errors.New("exit status 1")},
			"/repo:rev-parse --verify --quiet refs/heads/master":          {Output: "abc123"},
		}}
		branch, err := gitx.DefaultBranch(context.Background(), mock, "/repo", "", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(branch).To(Equal("master"))
	})

	It("falls back to the configured branch", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:symbolic-ref --quiet --short refs/remotes/upstream/HEAD": {Err: errors.New("exit status 1")},
			"/repo:rev-parse --verify --quiet refs/heads/main":              {Err: errors.New("exit status 1")},
			"/repo:rev-parse --verify --quiet refs/heads/master":            {Err: errors.New("exit status 1")},
		}}
		branch, err := gitx.DefaultBranch(context.Background(), mock, "/repo", "upstream", "trunk")
		Expect(err).NotTo(HaveOccurred())
		Expect(branch).To(Equal("trunk"))
	})

	It("falls back to main when nothing is configured", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:symbolic-ref --quiet --short refs/remotes/origin/HEAD": {Err: errors.New("exit status 1")},
			"/repo:rev-parse --verify --quiet refs/heads/main":            {Err: errors.New("exit status 1")},
			"/repo:rev-parse --verify --quiet refs/heads/master":          {Err: errors.New("exit status 1")},
		}}
		branch, err := gitx.DefaultBranch(context.Background(), mock, "/repo", "origin", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(branch).To(Equal("main"))
	})
})

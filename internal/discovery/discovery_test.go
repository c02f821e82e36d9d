package discovery_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitopen/internal/discovery"
	"github.com/skaphos/gitopen/internal/vcs"
)

func initRepo(path string, remotes map[string]string) {
	repo, err := git.PlainInit(path, false)
	Expect(err).NotTo(HaveOccurred())
	for name, url := range remotes {
		_, err := repo.CreateRemote(&gitconfig.RemoteConfig{Name: name, URLs: []string{url}})
		Expect(err).NotTo(HaveOccurred())
	}
}

var _ = Describe("Discovery", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("matches exclude patterns", func() {
		Expect(discovery.MatchesExclude("C:/code/repo/.git", []string{"**/.git/**"})).To(BeTrue())
		Expect(discovery.MatchesExclude("C:/code/repo", []string{"**/node_modules/**"})).To(BeFalse())
		Expect(discovery.MatchesExclude("/code/vendor/lib", []string{"**/vendor/**"})).To(BeTrue())
	})

	It("finds nested repositories with their primary remote", func() {
		root := GinkgoT().TempDir()
		api := filepath.Join(root, "services", "api")
		web := filepath.Join(root, "web")
		initRepo(api, map[string]string{
			"origin":   "git@github.com:acme/api.git",
			"upstream": "git@github.com:upstream/api.git",
		})
		initRepo(web, map[string]string{"mirror": "https://gitlab.com/acme/web.git"})
		Expect(os.MkdirAll(filepath.Join(root, "docs"), 0o755)).To(Succeed())

		results, err := discovery.Scan(ctx, discovery.Options{
			Roots:   []string{root},
			Adapter: vcs.NewGoGitAdapter(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(discovery.Paths(results)).To(Equal([]string{api, web}))
		Expect(results[0].PrimaryRemote).To(Equal("origin"))
		Expect(results[0].RemoteURL).To(Equal("git@github.com:acme/api.git"))
		Expect(results[0].Remotes).To(HaveLen(2))
		Expect(results[1].PrimaryRemote).To(Equal("mirror"))
	})

	It("returns the root itself when it is a repository", func() {
		root := GinkgoT().TempDir()
		initRepo(root, nil)
		initRepo(filepath.Join(root, "nested"), nil)

		results, err := discovery.Scan(ctx, discovery.Options{
			Roots:   []string{root},
			Adapter: vcs.NewGoGitAdapter(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(discovery.Paths(results)).To(Equal([]string{root}))
		Expect(results[0].PrimaryRemote).To(BeEmpty())
	})

	It("respects exclude patterns during scan", func() {
		root := GinkgoT().TempDir()
		initRepo(filepath.Join(root, "vendor", "repo2"), nil)

		results, err := discovery.Scan(ctx, discovery.Options{
			Roots:   []string{root},
			Exclude: []string{"**/vendor/**"},
			Adapter: vcs.NewGoGitAdapter(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})

	It("stops at the maximum depth", func() {
		root := GinkgoT().TempDir()
		shallow := filepath.Join(root, "a")
		deep := filepath.Join(root, "x", "y", "z")
		initRepo(shallow, nil)
		initRepo(deep, nil)

		results, err := discovery.Scan(ctx, discovery.Options{
			Roots:    []string{root},
			MaxDepth: 2,
			Adapter:  vcs.NewGoGitAdapter(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(discovery.Paths(results)).To(Equal([]string{shallow}))

		results, err = discovery.Scan(ctx, discovery.Options{
			Roots:    []string{root},
			MaxDepth: 3,
			Adapter:  vcs.NewGoGitAdapter(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(discovery.Paths(results)).To(Equal([]string{shallow, deep}))
	})

	It("detects linked .git files", func() {
		root := GinkgoT().TempDir()
		repo := filepath.Join(root, "repo3")
		initRepo(repo, nil)

		gitDir := filepath.Join(root, "repo3.gitdir")
		Expect(os.Rename(filepath.Join(repo, ".git"), gitDir)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(repo, ".git"), []byte("gitdir: "+gitDir), 0o644)).To(Succeed())

		results, err := discovery.Scan(ctx, discovery.Options{
			Roots:   []string{root},
			Adapter: vcs.NewGoGitAdapter(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(discovery.Paths(results)).To(Equal([]string{repo}))
	})

	It("stops when the context is cancelled", func() {
		root := GinkgoT().TempDir()
		initRepo(filepath.Join(root, "repo"), nil)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := discovery.Scan(cancelled, discovery.Options{
			Roots:   []string{root},
			Adapter: vcs.NewGoGitAdapter(),
		})
		Expect(err).To(MatchError(context.Canceled))
	})
})

package remote_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitopen/internal/model"
	"github.com/skaphos/gitopen/internal/remote"
)

var _ = Describe("Domains", func() {
	It("seeds the built-in providers", func() {
		d := remote.DefaultDomains()
		Expect(d).To(HaveKeyWithValue("github.com", model.ProviderGitHub))
		Expect(d).To(HaveKeyWithValue("gitlab.com", model.ProviderGitLab))
		Expect(d).To(HaveKeyWithValue("bitbucket.org", model.ProviderBitbucket))
	})

	It("returns independent copies of the defaults", func() {
		d := remote.DefaultDomains()
		d["github.com"] = model.ProviderGitLab
		Expect(remote.DefaultDomains()["github.com"]).To(Equal(model.ProviderGitHub))
	})

	It("matches subdomains of a configured key", func() {
		d := remote.Domains{"gitlab.example.com": model.ProviderGitLab}
		Expect(d.Classify("ci.gitlab.example.com")).To(Equal(model.ProviderGitLab))
	})

	It("does not match hosts that merely end with the key text", func() {
		d := remote.Domains{"gitlab.example.com": model.ProviderGitLab}
		Expect(d.Classify("notgitlab.example.com")).To(Equal(model.ProviderUnknown))
	})

	It("prefers an exact key over a suffix key", func() {
		d := remote.Domains{
			"example.com":     model.ProviderGitLab,
			"git.example.com": model.ProviderBitbucket,
		}
		Expect(d.Classify("git.example.com")).To(Equal(model.ProviderBitbucket))
	})

	It("prefers the longest suffix key", func() {
		d := remote.Domains{
			"example.com":      model.ProviderGitLab,
			"corp.example.com": model.ProviderAzure,
		}
		Expect(d.Classify("git.corp.example.com")).To(Equal(model.ProviderAzure))
		Expect(d.Classify("git.example.com")).To(Equal(model.ProviderGitLab))
	})

	It("matches hosts case-insensitively", func() {
		d := remote.Domains{"GitLab.Example.com": model.ProviderGitLab}
		Expect(d.Classify("GITLAB.example.COM")).To(Equal(model.ProviderGitLab))
	})

	It("treats empty hosts and tables as unknown", func() {
		Expect(remote.DefaultDomains().Classify("")).To(Equal(model.ProviderUnknown))
		Expect(remote.Domains{}.Classify("github.com")).To(Equal(model.ProviderUnknown))
	})

	It("layers overrides on top of defaults", func() {
		merged := remote.MergeDomains(remote.DefaultDomains(), remote.Domains{
			"GitHub.com":     model.ProviderGitLab,
			"git.corp.local": model.ProviderGitLab,
		})
		Expect(merged).To(HaveKeyWithValue("github.com", model.ProviderGitLab))
		Expect(merged).To(HaveKeyWithValue("git.corp.local", model.ProviderGitLab))
		Expect(merged).To(HaveKeyWithValue("bitbucket.org", model.ProviderBitbucket))
		Expect(merged.Hosts()).To(Equal([]string{"bitbucket.org", "git.corp.local", "github.com", "gitlab.com"}))
	})

	DescribeTable("suggests providers from host names",
		func(baseURL string, expected model.Provider) {
			Expect(remote.SuggestProvider(baseURL)).To(Equal(expected))
		},
		Entry("gitlab", "https://gitlab.corp.io", model.ProviderGitLab),
		Entry("github enterprise", "https://github.acme.com", model.ProviderGitHub),
		Entry("bitbucket server", "https://bitbucket.acme.com", model.ProviderBitbucket),
		Entry("azure", "https://azure.acme.com", model.ProviderAzure),
		Entry("visualstudio", "https://acme.visualstudio.com", model.ProviderAzure),
		Entry("unfamiliar", "https://git.acme.com", model.ProviderUnknown),
	)
})

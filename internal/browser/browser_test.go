package browser_test

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitopen/internal/browser"
)

var _ = Describe("Command", func() {
	const url = "https://github.com/octocat/Hello-World/pulls"

	DescribeTable("picks the platform opener",
		func(goos, name string, args []string) {
			gotName, gotArgs, err := browser.Command(goos, url)
			Expect(err).NotTo(HaveOccurred())
			Expect(gotName).To(Equal(name))
			Expect(gotArgs).To(Equal(args))
		},
		Entry("darwin", "darwin", "open", []string{url}),
		Entry("linux", "linux", "xdg-open", []string{url}),
		Entry("windows", "windows", "rundll32", []string{"url.dll,FileProtocolHandler", url}),
	)

	It("rejects unknown platforms", func() {
		_, _, err := browser.Command("plan9", url)
		Expect(err).To(MatchError(ContainSubstring("unsupported platform: plan9")))
	})
})

var _ = Describe("SystemOpener", func() {
	It("starts the opener with the URL", func() {
		var started *exec.Cmd
		opener := browser.SystemOpener{
			GOOS: "linux",
			Start: func(cmd *exec.Cmd) error {
				started = cmd
				return nil
			},
		}
		Expect(opener.Open(context.Background(), "https://gitlab.com/group/project")).To(Succeed())
		Expect(started).NotTo(BeNil())
		Expect(filepath.Base(started.Path)).To(Equal("xdg-open"))
		Expect(started.Args).To(Equal([]string{"xdg-open", "https://gitlab.com/group/project"}))
	})

	It("wraps start failures", func() {
		boom := errors.New("not found")
		opener := browser.SystemOpener{
			GOOS:  "darwin",
			Start: func(*exec.Cmd) error { return boom },
		}
		err := opener.Open(context.Background(), "https://github.com/a/b")
		Expect(err).To(MatchError(boom))
		Expect(err.Error()).To(ContainSubstring("with open"))
	})
})

var _ = Describe("PrintOpener", func() {
	It("prints the URL", func() {
		var out bytes.Buffer
		Expect(browser.PrintOpener{Out: &out}.Open(context.Background(), "https://bitbucket.org/a/b")).To(Succeed())
		Expect(out.String()).To(Equal("https://bitbucket.org/a/b\n"))
	})
})

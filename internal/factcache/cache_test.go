package factcache_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitopen/internal/factcache"
)

var _ = Describe("Cache", func() {
	var (
		now   time.Time
		clock func() time.Time
	)

	BeforeEach(func() {
		now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		clock = func() time.Time { return now }
	})

	It("returns fresh entries", func() {
		c := factcache.New[string](time.Minute, clock)
		c.Set("/repo", "git@github.com:org/repo.git")
		now = now.Add(59 * time.Second)
		value, ok := c.Get("/repo")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("git@github.com:org/repo.git"))
	})

	It("treats an entry as expired exactly at the TTL", func() {
		c := factcache.New[string](time.Minute, clock)
		c.Set("/repo", "main")
		now = now.Add(time.Minute)
		_, ok := c.Get("/repo")
		Expect(ok).To(BeFalse())
	})

	It("refreshes timestamps on overwrite", func() {
		c := factcache.New[int](30*time.Second, clock)
		c.Set("k", 1)
		now = now.Add(20 * time.Second)
		c.Set("k", 2)
		now = now.Add(20 * time.Second)
		value, ok := c.Get("k")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal(2))
	})

	It("keeps keys independent", func() {
		c := factcache.New[string](time.Minute, clock)
		c.Set("/a", "a")
		_, ok := c.Get("/b")
		Expect(ok).To(BeFalse())
		c.Delete("/a")
		Expect(c.Len()).To(Equal(0))
	})

	It("clears all entries", func() {
		c := factcache.New[string](time.Minute, clock)
		c.Set("/a", "a")
		c.Set("/b", "b")
		c.Clear()
		Expect(c.Len()).To(Equal(0))
	})

	It("loads once while fresh and does not cache errors", func() {
		c := factcache.New[string](time.Minute, clock)
		calls := 0
		load := func() (string, error) {
			calls++
			return "feature", nil
		}
		Expect(c.GetOrLoad("/repo", load)).To(Equal("feature"))
		Expect(c.GetOrLoad("/repo", load)).To(Equal("feature"))
		Expect(calls).To(Equal(1))

		now = now.Add(2 * time.Minute)
		Expect(c.GetOrLoad("/repo", load)).To(Equal("feature"))
		Expect(calls).To(Equal(2))

		_, err := c.GetOrLoad("/other", func() (string, error) { return "", errors.New("boom") })
		Expect(err).To(MatchError("boom"))
		_, ok := c.Get("/other")
		Expect(ok).To(BeFalse())
	})

	It("defaults to the wall clock", func() {
		c := factcache.New[string](time.Hour, nil)
		c.Set("k", "v")
		value, ok := c.Get("k")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("v"))
		Expect(c.TTL()).To(Equal(time.Hour))
	})
})

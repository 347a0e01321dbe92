package transcript_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/visorx/pkg/llm"
	"github.com/papercomputeco/visorx/pkg/transcript"
)

var _ = Describe("Transcript", func() {
	var t *transcript.Transcript

	BeforeEach(func() {
		t = transcript.New()
	})

	It("starts empty", func() {
		Expect(t.Len()).To(Equal(0))
		Expect(t.Head()).To(BeNil())
		Expect(t.Messages()).To(BeEmpty())
	})

	It("keeps insertion order and chains entries", func() {
		first := t.Append(userMsg("one"))
		second := t.Append(llm.Message{Role: llm.RoleModel, Content: "two"})

		Expect(t.Len()).To(Equal(2))
		Expect(t.Head()).To(Equal(second))
		Expect(first.ParentHash).To(BeNil())
		Expect(*second.ParentHash).To(Equal(first.Hash))

		msgs := t.Messages()
		Expect(msgs[0].Content).To(Equal("one"))
		Expect(msgs[1].Content).To(Equal("two"))
		Expect(t.Verify()).To(Succeed())
	})

	It("returns snapshots that do not grow with later appends", func() {
		t.Append(userMsg("one"))
		snapshot := t.Entries()
		t.Append(userMsg("two"))

		Expect(snapshot).To(HaveLen(1))
	})

	Describe("Get", func() {
		It("finds entries by hash", func() {
			e := t.Append(userMsg("one"))

			got, err := t.Get(e.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(e))
		})

		It("returns ErrNotFound for unknown hashes", func() {
			_, err := t.Get("nope")
			Expect(err).To(MatchError(transcript.ErrNotFound{Hash: "nope"}))
		})
	})

	Describe("Since", func() {
		It("returns entries after the given hash", func() {
			a := t.Append(userMsg("a"))
			b := t.Append(userMsg("b"))
			c := t.Append(userMsg("c"))

			after, err := t.Since(a.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(Equal([]*transcript.Entry{b, c}))

			all, err := t.Since("")
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))

			none, err := t.Since(c.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(none).To(BeEmpty())
		})

		It("fails on unknown hashes", func() {
			_, err := t.Since("missing")
			Expect(err).To(HaveOccurred())
		})
	})

	It("keeps a valid chain under concurrent appends", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				t.Append(userMsg("concurrent"))
			}()
		}
		wg.Wait()

		Expect(t.Len()).To(Equal(50))
		Expect(t.Verify()).To(Succeed())
	})
})

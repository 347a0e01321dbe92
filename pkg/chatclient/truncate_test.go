package chatclient

import (
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("truncate", func() {
	It("keeps short text unchanged and flattens newlines", func() {
		Expect(truncate("hola\nmundo", 100)).To(Equal("hola mundo"))
	})

	It("cuts multibyte text on a rune boundary", func() {
		out := truncate("¿Cómo está la economía española este año?", 10)

		Expect(utf8.ValidString(out)).To(BeTrue())
		Expect(out).To(HaveSuffix("..."))
		Expect(utf8.RuneCountInString(out)).To(BeNumerically("<=", 10))
	})
})

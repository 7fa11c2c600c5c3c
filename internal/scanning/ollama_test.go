package scanning

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server     *ghttp.Server
		recognizer *Ollama
		text       string
		err        error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var newErr error
		recognizer, newErr = NewOllama(server.URL(), "qwen2.5vl", "nl")
		Expect(newErr).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		text, err = recognizer.RecognizeText(context.Background(), encodePNG(20, 20), "image/png")
	})

	When("the model returns a transcript", func() {
		var request ollamaChatRequest

		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					body, readErr := io.ReadAll(r.Body)
					Expect(readErr).NotTo(HaveOccurred())
					Expect(json.Unmarshal(body, &request)).To(Succeed())
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: "```\nBrood 2,49 B\nTotaal 2,49\n```"},
					Done:    true,
				}),
			))
		})

		It("should return the cleaned transcript", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Brood 2,49 B\nTotaal 2,49"))
		})

		It("should send the image with the user message", func() {
			Expect(request.Model).To(Equal("qwen2.5vl"))
			Expect(request.Stream).To(BeFalse())
			Expect(request.Messages).To(HaveLen(2))
			Expect(request.Messages[1].Images).To(HaveLen(1))
			Expect(request.Messages[1].Content).To(ContainSubstring("Dutch"))
		})
	})

	When("the API returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("returns ErrRecognizerUnavailable", func() {
			Expect(err).To(MatchError(ErrRecognizerUnavailable))
			Expect(err.Error()).To(ContainSubstring("model not loaded"))
		})
	})

	When("the model returns nothing", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{Done: true}))
		})

		It("returns ErrNoText", func() {
			Expect(err).To(MatchError(ErrNoText))
		})
	})
})

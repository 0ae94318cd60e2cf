package predict

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPredict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("path = %q, want /predict", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "note.png" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "image bytes" {
			t.Errorf("payload = %q", data)
		}

		w.Write([]byte(`{"status": "success", "prediction": "INR-500", "confidence": 97.5}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	result, err := c.Predict(context.Background(), "note.png", []byte("image bytes"))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if result.Prediction != "INR-500" {
		t.Errorf("Prediction = %q", result.Prediction)
	}
	if result.Confidence != 97.5 {
		t.Errorf("Confidence = %v", result.Confidence)
	}
}

func TestPredictWithoutURL(t *testing.T) {
	c := NewClient("")
	if _, err := c.Predict(context.Background(), "note.png", []byte("x")); err == nil {
		t.Error("want error when model URL is not configured")
	}
}

func TestPredictErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	if _, err := c.Predict(context.Background(), "note.png", []byte("x")); err == nil {
		t.Error("want error on non-200 status")
	}
}

package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/rs/zerolog"

	"pixelmorph/internal/domain"
	"pixelmorph/internal/preview"
)

func memFile(name, contentType string, data []byte) File {
	return File{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func TestLoadPNGRoundTrip(t *testing.T) {
	reg := preview.NewRegistry("/v1/previews")
	l := New(reg, 0, zerolog.Nop())
	payload := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 1, 2, 3}

	asset, err := l.Load(context.Background(), memFile("pic.png", "image/png", payload))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if asset.MIMEType != "image/png" {
		t.Fatalf("MIMEType = %q, want image/png", asset.MIMEType)
	}
	decoded, err := base64.StdEncoding.DecodeString(asset.Base64)
	if err != nil {
		t.Fatalf("decode Base64: %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Fatalf("decoded payload = %v, want %v", decoded, payload)
	}
	if asset.PreviewID == "" || asset.PreviewURL != reg.URL(asset.PreviewID) {
		t.Fatalf("preview = %q %q", asset.PreviewID, asset.PreviewURL)
	}
	if _, ok := reg.Get(asset.PreviewID); !ok {
		t.Fatal("preview handle not registered")
	}
}

func TestLoadRejections(t *testing.T) {
	tests := []struct {
		name string
		file File
		max  int64
		want error
	}{
		{
			name: "non-image content type",
			file: memFile("notes.txt", "text/plain", []byte("hello")),
			want: domain.ErrUnsupportedMedia,
		},
		{
			name: "missing content type",
			file: memFile("blob", "", []byte("hello")),
			want: domain.ErrUnsupportedMedia,
		},
		{
			name: "declared size over limit",
			file: memFile("big.png", "image/png", bytes.Repeat([]byte{1}, 16)),
			max:  8,
			want: domain.ErrFileTooLarge,
		},
		{
			name: "empty file",
			file: memFile("empty.png", "image/png", nil),
			want: domain.ErrEmptyFile,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := preview.NewRegistry("")
			l := New(reg, tc.max, zerolog.Nop())
			asset, err := l.Load(context.Background(), tc.file)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Load error = %v, want %v", err, tc.want)
			}
			if asset != nil {
				t.Fatalf("Load returned asset %+v on error", asset)
			}
			if reg.Len() != 0 {
				t.Fatalf("rejected file registered %d previews", reg.Len())
			}
		})
	}
}

func TestLoadUnderreportedSizeStillCapped(t *testing.T) {
	f := memFile("liar.png", "image/png", bytes.Repeat([]byte{7}, 32))
	f.Size = 1
	_, err := New(nil, 8, zerolog.Nop()).Load(context.Background(), f)
	if !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("Load error = %v, want ErrFileTooLarge", err)
	}
}

func TestLoadCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil, 0, zerolog.Nop()).Load(ctx, memFile("a.png", "image/png", []byte{1}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Load error = %v, want context.Canceled", err)
	}
}

func TestFromMultipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="cat.webp"`)
	h.Set("Content-Type", "image/webp")
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	_, _ = part.Write([]byte("RIFFdata"))
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	mf, fh, err := req.FormFile("image")
	if err != nil {
		t.Fatalf("FormFile: %v", err)
	}
	defer mf.Close()

	asset, err := New(nil, 0, zerolog.Nop()).Load(context.Background(), FromMultipart(mf, fh))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if asset.Filename != "cat.webp" || asset.MIMEType != "image/webp" {
		t.Fatalf("asset = %q %q", asset.Filename, asset.MIMEType)
	}
	if string(asset.Data) != "RIFFdata" {
		t.Fatalf("Data = %q", asset.Data)
	}
}

type trackedFile struct {
	*bytes.Reader
	closed int
}

func (f *trackedFile) Close() error {
	f.closed++
	return nil
}

func TestFromMultipartLeavesFileToCaller(t *testing.T) {
	mf := &trackedFile{Reader: bytes.NewReader([]byte("pngdata"))}
	fh := &multipart.FileHeader{Filename: "a.png", Size: 7, Header: textproto.MIMEHeader{"Content-Type": {"image/png"}}}
	_, _ = mf.Seek(3, io.SeekStart)

	asset, err := New(nil, 0, zerolog.Nop()).Load(context.Background(), FromMultipart(mf, fh))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if string(asset.Data) != "pngdata" {
		t.Fatalf("Data = %q, want full file", asset.Data)
	}
	if mf.closed != 0 {
		t.Fatalf("file closed %d times by loader", mf.closed)
	}
}

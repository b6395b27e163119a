// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/cache"
	"github.com/vechain/veescrow/thor"
)

// Request authentication headers. A write request is signed over its method,
// request URI, expiry, nonce and body; the recovered signer is the caller.
const (
	SignatureHeader = "x-signature"
	ExpiryHeader    = "x-expiry"
	NonceHeader     = "x-nonce"
	// CallerHeader optionally names the expected signer.
	CallerHeader = "x-caller"
)

const (
	// MaxSignatureTTL bounds how far ahead of now a signature may expire.
	MaxSignatureTTL = 5 * time.Minute
	maxSignedBody   = 1 << 20
	usedSigsSize    = 65536
)

type callerKey struct{}

// SigningHash returns the hash a request is signed over.
func SigningHash(method, requestURI string, expiry, nonce uint64, body []byte) thor.Bytes32 {
	return thor.Blake2b(
		[]byte(method+" "+requestURI+"\n"),
		[]byte(strconv.FormatUint(expiry, 10)+"\n"),
		[]byte(strconv.FormatUint(nonce, 10)+"\n"),
		body,
	)
}

// SignRequest signs req with key, the signature expiring at expiry (unix
// seconds). Requests with equal content need distinct nonces.
func SignRequest(req *http.Request, key *ecdsa.PrivateKey, expiry, nonce uint64) error {
	var body []byte
	if req.Body != nil {
		var err error
		if body, err = io.ReadAll(req.Body); err != nil {
			return err
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	hash := SigningHash(req.Method, req.URL.RequestURI(), expiry, nonce, body)
	sig, err := crypto.Sign(hash[:], key)
	if err != nil {
		return err
	}
	req.Header.Set(SignatureHeader, hexutil.Encode(sig))
	req.Header.Set(ExpiryHeader, strconv.FormatUint(expiry, 10))
	req.Header.Set(NonceHeader, strconv.FormatUint(nonce, 10))
	return nil
}

// Authenticator recovers the signer of requests carrying a signature and
// rejects forged, expired or replayed ones.
type Authenticator struct {
	clock func() time.Time

	mu   sync.Mutex
	used *cache.LRU[thor.Bytes32, uint64] // signed request => expiry
}

// NewAuthenticator creates an Authenticator. A nil clock means time.Now.
func NewAuthenticator(clock func() time.Time) *Authenticator {
	if clock == nil {
		clock = time.Now
	}
	used, err := cache.NewLRU[thor.Bytes32, uint64](usedSigsSize)
	if err != nil {
		panic(err)
	}
	return &Authenticator{clock: clock, used: used}
}

// Middleware attaches the verified signer to signed requests. Unsigned
// requests, and requests already verified, pass through.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if _, ok := req.Context().Value(callerKey{}).(thor.Address); ok || req.Header.Get(SignatureHeader) == "" {
			next.ServeHTTP(w, req)
			return
		}
		caller, err := a.verify(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), callerKey{}, caller)))
	})
}

func (a *Authenticator) verify(req *http.Request) (thor.Address, error) {
	sig, err := hexutil.Decode(req.Header.Get(SignatureHeader))
	if err != nil {
		return thor.Address{}, errors.WithMessage(err, SignatureHeader)
	}
	if len(sig) != crypto.SignatureLength {
		return thor.Address{}, errors.Errorf("%v: invalid length %v", SignatureHeader, len(sig))
	}
	expiry, err := strconv.ParseUint(req.Header.Get(ExpiryHeader), 10, 64)
	if err != nil {
		return thor.Address{}, errors.WithMessage(err, ExpiryHeader)
	}
	nonce, err := strconv.ParseUint(req.Header.Get(NonceHeader), 10, 64)
	if err != nil {
		return thor.Address{}, errors.WithMessage(err, NonceHeader)
	}
	now := uint64(a.clock().Unix())
	if expiry < now {
		return thor.Address{}, errors.New("signature expired")
	}
	if expiry > now+uint64(MaxSignatureTTL/time.Second) {
		return thor.Address{}, errors.New("signature expiry too far ahead")
	}

	var body []byte
	if req.Body != nil {
		if body, err = io.ReadAll(http.MaxBytesReader(nil, req.Body, maxSignedBody)); err != nil {
			return thor.Address{}, errors.WithMessage(err, "read body")
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	hash := SigningHash(req.Method, req.URL.RequestURI(), expiry, nonce, body)
	pub, err := crypto.SigToPub(hash[:], sig)
	if err != nil {
		return thor.Address{}, errors.WithMessage(err, "recover signer")
	}
	signer := thor.Address(crypto.PubkeyToAddress(*pub))

	if v := req.Header.Get(CallerHeader); v != "" {
		expected, err := thor.ParseAddress(v)
		if err != nil {
			return thor.Address{}, errors.WithMessage(err, CallerHeader)
		}
		if expected != signer {
			return thor.Address{}, errors.Errorf("%v: %v is not the signer", CallerHeader, expected)
		}
	}

	// one signed request per signer, however the signature is encoded
	key := thor.Blake2b(hash[:], signer[:])
	a.mu.Lock()
	defer a.mu.Unlock()
	if exp, ok := a.used.Get(key); ok && exp >= now {
		return thor.Address{}, errors.New("signature already used")
	}
	a.used.Add(key, expiry)
	return signer, nil
}

// Caller returns the verified signer of req.
func Caller(req *http.Request) (thor.Address, error) {
	caller, ok := req.Context().Value(callerKey{}).(thor.Address)
	if !ok {
		return thor.Address{}, Unauthorized(errors.New("signature required"))
	}
	return caller, nil
}

package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// BrowserClient is a Chrome-fingerprinted client, optionally behind a proxy pool.
type BrowserClient = stealth.BrowserClient

// Re-export stealth helpers for engine consumers.
func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }
func RandomUserAgent() string          { return stealth.RandomUserAgent() }

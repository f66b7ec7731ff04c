package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowCookieExtractionGuide explains how to copy the session cookies out of a browser
func ShowCookieExtractionGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "INSTAGRAM SESSION COOKIES")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Scanning works without a session, but Instagram hides more profiles")
	fmt.Fprintln(w, "and throttles sooner. A logged-in browser session avoids both.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "1. Log in at https://www.instagram.com in your browser.")
	fmt.Fprintln(w, "2. Open Developer Tools (F12, or Cmd+Option+I on macOS).")
	fmt.Fprintln(w, "3. Chrome/Edge: Application tab. Firefox: Storage tab.")
	fmt.Fprintln(w, "4. Expand Cookies and select https://www.instagram.com.")
	fmt.Fprintln(w, "5. Copy the values of these cookies:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "   sessionid   long string containing %3A")
	fmt.Fprintln(w, "   csrftoken   32 characters")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Copy only the value, without quotes or semicolons. Sessions expire,")
	fmt.Fprintln(w, "so run 'igreport auth login' again when scans start failing.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "These cookies grant full access to the account. igreport stores them")
	fmt.Fprintln(w, "in the system keychain or an encrypted file and never writes passwords.")
	fmt.Fprintln(w, rule)
}

// ShowQuickExtractGuide is the one-line version of ShowCookieExtractionGuide
func ShowQuickExtractGuide(w io.Writer) {
	fmt.Fprintln(w, "Cookies: F12 -> Application/Storage -> Cookies -> instagram.com")
	fmt.Fprintln(w, "Need sessionid and csrftoken. Type 'help' for detailed instructions.")
}

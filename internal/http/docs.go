// package http contains the request and response types, which are meant
// to be exported. the types are re-exported by the top level package so
// that callers never import anything under internal/.
//
// the package also holds the error taxonomy shared by the dialer and the
// transport, so that both sides report failures the same way.
package http

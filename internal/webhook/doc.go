// Package webhook uploads a single file to a webhook endpoint as a
// multipart/form-data POST.
//
// Each upload reads the file fully into memory, attaches it as the `file` part
// (named after the file's base name) together with an optional `content`
// caption, and issues exactly one request through an injectable Doer. Failures
// come back as *Error values whose Kind separates local read problems from
// transport failures and remote rejections; each kind also matches the
// corresponding services marker through errors.Is.
package webhook

// Package upload provides engine.Uploader and engine.ImageLoader
// implementations backed by an HTTP endpoint or an S3-compatible bucket.
//
// HTTPUploader posts each image as multipart/form-data and expects a JSON
// body of the form {"url": "..."}. Calls run behind a circuit breaker so a
// failing endpoint is not hammered while the user keeps inserting images.
//
// S3Uploader stores images under a random object key and returns the public
// URL of the object.
package upload

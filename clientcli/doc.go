// Package clientcli provides a client library for a running swiftgate gateway.
//
// It supports upload, download and list operations through presigned URLs,
// signed with an access key the gateway knows. Without credentials requests
// are sent plain, which works against public gateways. The package includes
// profile-based configuration for managing connections to multiple gateways.
//
// # Basic Usage
//
// Create a client and upload a file:
//
//	cfg := &clientcli.Config{
//		Endpoint:  "http://localhost:5708",
//		AccessKey: "your-access-key",
//		SecretKey: "your-secret-key",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath: "./report.pdf",
//		Container: "documents",
//	})
//
// Uploads are streamed as multipart/form-data; the file is never read into
// memory as a whole.
//
// # Profiles
//
// A profile saves one gateway together with a default container. Layer it
// under the environment so SWIFTGATE_* variables still win:
//
//	file, err := clientcli.LoadConfigFile(clientcli.ConfigPath(""))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := file.Profile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.Resolve(profile.Config(), clientcli.EnvConfig()))
//
// Upload, Download and List use the profile container when their options
// name none.
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli

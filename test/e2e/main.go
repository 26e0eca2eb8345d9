// Package main provides the entry point for the e2e test suite.
package main

import (
	"context"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/nicholas-fedor/tagreload/test/e2e/framework"
)

const (
	minArgs   = 2
	imageName = "tagreload"
	imageTag  = "test"
)

func main() {
	if len(os.Args) < minArgs {
		printUsage()
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "build":
		buildImage()
	case "test":
		runTests()
	case "run":
		buildImage()
		runTests()
	case "cleanup":
		cleanup()
	default:
		log.Printf("Unknown command: %s", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	log.Println("Usage: go run ./test/e2e <command>")
	log.Println("Commands:")
	log.Println("  build   - Build the local tagreload Docker image")
	log.Println("  test    - Run the e2e test suite")
	log.Println("  run     - Build image and run tests")
	log.Println("  cleanup - Remove the test image")
}

func buildImage() {
	log.Printf("Building image %s:%s", imageName, imageTag)

	frameworkInstance, err := framework.NewE2EFramework(imageName + ":" + imageTag)
	if err != nil {
		log.Fatalf("Failed to create framework: %v", err)
	}

	if err := frameworkInstance.BuildTagreloadImage(".", imageName, imageTag); err != nil {
		log.Fatalf("Failed to build image: %v", err)
	}

	cmd := exec.CommandContext(context.Background(), "docker", "run", "--rm", imageName+":"+imageTag, "--help")

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Fatalf("Image verification failed: %v\nOutput: %s", err, string(output))
	}

	log.Println("Image built and verified")
}

func runTests() {
	log.Println("Running e2e test suite...")

	cmd := exec.CommandContext(context.Background(), "go", "test", "-tags", "e2e", "./test/e2e/...")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		log.Fatalf("Tests failed: %v", err)
	}

	log.Println("Tests completed")
}

func cleanup() {
	log.Printf("Removing test image %s:%s", imageName, imageTag)

	cmd := exec.CommandContext(context.Background(), "docker", "rmi", imageName+":"+imageTag)

	output, err := cmd.CombinedOutput()
	if err != nil && !strings.Contains(string(output), "No such image") {
		log.Printf("Warning: Failed to remove image: %v\nOutput: %s", err, string(output))
	}

	log.Println("Cleanup completed")
}

package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
)

// GoldenData is one entry of the golden file: a digest of the sorted sieve
// output for a given limit.
type GoldenData struct {
	Limit  string `json:"limit"`
	Count  int    `json:"count"`
	Last   string `json:"last"`
	Sum    string `json:"sum"`
	SHA256 string `json:"sha256"`
}

func main() {
	outputDir := flag.String("out", "internal/sieve/testdata", "Output directory for the golden file")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "primes_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	// Small edge limits, the first limits around the 1000th prime (7919),
	// powers of ten and a limb-sized power of two.
	targets := []uint64{
		1, 2, 3, 4, 10, 100, 1000, 7919, 7920,
		10000, 65536, 100000, 1000000,
	}

	var data []GoldenData
	fmt.Println("Generating golden data...")
	for _, limit := range targets {
		data = append(data, digest(limit))
		fmt.Printf("Generated primes below %d\n", limit)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully generated golden file at %s\n", filename)
}

// digest enumerates the primes below limit with math/big's primality test,
// which is exact for values below 2^64, and summarizes the sorted output.
func digest(limit uint64) GoldenData {
	h := sha256.New()
	sum := new(big.Int)
	g := GoldenData{Limit: strconv.FormatUint(limit, 10)}
	for n := uint64(2); n < limit; n++ {
		if !new(big.Int).SetUint64(n).ProbablyPrime(0) {
			continue
		}
		line := strconv.FormatUint(n, 10)
		h.Write([]byte(line + "\n"))
		sum.Add(sum, new(big.Int).SetUint64(n))
		g.Count++
		g.Last = line
	}
	g.Sum = sum.String()
	g.SHA256 = hex.EncodeToString(h.Sum(nil))
	return g
}

// Package tidecal buckets raw tide predictions into calendar days and
// decides which days clear a user's high tide threshold. Day values are
// rebuilt wholesale from each fetch; nothing here mutates incrementally.
package tidecal

package storage

import (
	"bytes"
	"testing"
	"time"

	"gopkg.in/yaml.v2"
)

func TestKVConfig_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		want    KVConfig
		wantErr bool
	}{
		{
			name: "valid/canonical case",
			config: `storageDir: ./history
keyTTL: "168h"`,
			want: KVConfig{StorageDirPath: "./history", KeyTTLDuration: 168 * time.Hour},
		},
		{
			name:   "no key TTL",
			config: `storageDir: ./history`,
			want:   KVConfig{StorageDirPath: "./history", KeyTTLDuration: DefaultKeyTTL},
		},
		{
			name:   "no storage dir disables the database",
			config: `keyTTL: "1h"`,
			want:   KVConfig{KeyTTLDuration: time.Hour},
		},
		{
			name: "key TTL not a duration",
			config: `storageDir: ./history
keyTTL: "168"`,
			wantErr: true,
		},
		{
			name: "negative key TTL",
			config: `storageDir: ./history
keyTTL: "-1h"`,
			wantErr: true,
		},
		{
			name:    "not a map",
			config:  `[]`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bytes.NewBuffer([]byte(tt.config))
			dec := yaml.NewDecoder(buf)
			var c KVConfig
			err := dec.Decode(&c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr = %v but got %v with err %v", tt.wantErr, err != nil, err)
			}
			if err == nil && c != tt.want {
				t.Errorf("want %+v but got %+v", tt.want, c)
			}
		})
	}
}

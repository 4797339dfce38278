// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/syndex/core"
)

// Element serializers shared by the record serializers below.
var (
	stringSliceMUS = ord.NewSliceSer[string](ord.String)
	intSliceMUS    = ord.NewSliceSer[int](varint.Int)
)

// Times are stored as Unix microseconds and restored in UTC.
func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

// accessRulesSer serializes core.AccessRules. Field order is the wire
// format.
type accessRulesSer struct{}

// AccessRulesMUS is the serializer for core.AccessRules.
var AccessRulesMUS = accessRulesSer{}

func (accessRulesSer) Marshal(v core.AccessRules, bs []byte) (n int) {
	n = stringSliceMUS.Marshal(v.AllowedTeams, bs)
	n += stringSliceMUS.Marshal(v.RequiredRoles, bs[n:])
	n += stringSliceMUS.Marshal(v.ForbiddenUsers, bs[n:])
	n += ord.String.Marshal(string(v.MinSecurityClearance), bs[n:])
	n += stringSliceMUS.Marshal(v.RequiredProjects, bs[n:])
	n += ord.Bool.Marshal(v.PublicWithinOrg, bs[n:])
	n += intSliceMUS.Marshal(v.RestrictedDocuments, bs[n:])
	return n
}

func (accessRulesSer) Unmarshal(bs []byte) (v core.AccessRules, n int, err error) {
	var n1 int
	if v.AllowedTeams, n, err = stringSliceMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.RequiredRoles, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ForbiddenUsers, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	var clearance string
	if clearance, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.MinSecurityClearance = core.Clearance(clearance)
	n += n1
	if v.RequiredProjects, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.PublicWithinOrg, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.RestrictedDocuments, n1, err = intSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (accessRulesSer) Size(v core.AccessRules) (size int) {
	size = stringSliceMUS.Size(v.AllowedTeams)
	size += stringSliceMUS.Size(v.RequiredRoles)
	size += stringSliceMUS.Size(v.ForbiddenUsers)
	size += ord.String.Size(string(v.MinSecurityClearance))
	size += stringSliceMUS.Size(v.RequiredProjects)
	size += ord.Bool.Size(v.PublicWithinOrg)
	size += intSliceMUS.Size(v.RestrictedDocuments)
	return size
}

// siloMetadataSer serializes core.SiloMetadata. Field order is the wire
// format.
type siloMetadataSer struct{}

// SiloMetadataMUS is the serializer for core.SiloMetadata.
var SiloMetadataMUS = siloMetadataSer{}

func (siloMetadataSer) Marshal(v core.SiloMetadata, bs []byte) (n int) {
	n = ord.String.Marshal(v.SiloID, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(string(v.SiloType), bs[n:])
	n += ord.String.Marshal(v.OrganizationID, bs[n:])
	n += ord.String.Marshal(v.TeamID, bs[n:])
	n += AccessRulesMUS.Marshal(v.AccessRules, bs[n:])
	n += varint.Int.Marshal(int(v.DataClassification), bs[n:])
	n += marshalTime(v.LastIndexed, bs[n:])
	n += varint.Int.Marshal(v.EmbeddingDimension, bs[n:])
	n += varint.Int.Marshal(v.DocumentCount, bs[n:])
	return n
}

func (siloMetadataSer) Unmarshal(bs []byte) (v core.SiloMetadata, n int, err error) {
	var n1 int
	if v.SiloID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	var siloType string
	if siloType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.SiloType = core.SiloType(siloType)
	n += n1
	if v.OrganizationID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.TeamID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.AccessRules, n1, err = AccessRulesMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	var classification int
	if classification, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.DataClassification = core.AccessLevel(classification)
	n += n1
	if v.LastIndexed, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.EmbeddingDimension, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.DocumentCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (siloMetadataSer) Size(v core.SiloMetadata) (size int) {
	size = ord.String.Size(v.SiloID)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(string(v.SiloType))
	size += ord.String.Size(v.OrganizationID)
	size += ord.String.Size(v.TeamID)
	size += AccessRulesMUS.Size(v.AccessRules)
	size += varint.Int.Size(int(v.DataClassification))
	size += sizeTime(v.LastIndexed)
	size += varint.Int.Size(v.EmbeddingDimension)
	size += varint.Int.Size(v.DocumentCount)
	return size
}

// auditRecordSer serializes core.AuditRecord. Field order is the wire
// format.
type auditRecordSer struct{}

// AuditRecordMUS is the serializer for core.AuditRecord.
var AuditRecordMUS = auditRecordSer{}

func (auditRecordSer) Marshal(v core.AuditRecord, bs []byte) (n int) {
	n = marshalTime(v.Timestamp, bs)
	n += ord.String.Marshal(v.UserID, bs[n:])
	n += ord.String.Marshal(v.OrganizationID, bs[n:])
	n += ord.String.Marshal(v.SiloID, bs[n:])
	n += ord.String.Marshal(v.SiloName, bs[n:])
	n += ord.Bool.Marshal(v.Granted, bs[n:])
	n += ord.String.Marshal(v.Reason, bs[n:])
	return n
}

func (auditRecordSer) Unmarshal(bs []byte) (v core.AuditRecord, n int, err error) {
	var n1 int
	if v.Timestamp, n, err = unmarshalTime(bs); err != nil {
		return
	}
	if v.UserID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.OrganizationID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.SiloID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.SiloName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Granted, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Reason, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (auditRecordSer) Size(v core.AuditRecord) (size int) {
	size = sizeTime(v.Timestamp)
	size += ord.String.Size(v.UserID)
	size += ord.String.Size(v.OrganizationID)
	size += ord.String.Size(v.SiloID)
	size += ord.String.Size(v.SiloName)
	size += ord.Bool.Size(v.Granted)
	size += ord.String.Size(v.Reason)
	return size
}

// usageRecordSer serializes core.UsageRecord. Field order is the wire
// format.
type usageRecordSer struct{}

// UsageRecordMUS is the serializer for core.UsageRecord.
var UsageRecordMUS = usageRecordSer{}

func (usageRecordSer) Marshal(v core.UsageRecord, bs []byte) (n int) {
	n = marshalTime(v.Timestamp, bs)
	n += ord.String.Marshal(v.Mechanism, bs[n:])
	n += raw.Float64.Marshal(v.BudgetSpent, bs[n:])
	n += raw.Float64.Marshal(v.Sensitivity, bs[n:])
	n += varint.Int.Marshal(v.DataSize, bs[n:])
	return n
}

func (usageRecordSer) Unmarshal(bs []byte) (v core.UsageRecord, n int, err error) {
	var n1 int
	if v.Timestamp, n, err = unmarshalTime(bs); err != nil {
		return
	}
	if v.Mechanism, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.BudgetSpent, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Sensitivity, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.DataSize, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (usageRecordSer) Size(v core.UsageRecord) (size int) {
	size = sizeTime(v.Timestamp)
	size += ord.String.Size(v.Mechanism)
	size += raw.Float64.Size(v.BudgetSpent)
	size += raw.Float64.Size(v.Sensitivity)
	size += varint.Int.Size(v.DataSize)
	return size
}

// MarshalSiloMetadata serializes silo metadata to bytes.
func MarshalSiloMetadata(silo *core.SiloMetadata) []byte {
	buf := make([]byte, SiloMetadataMUS.Size(*silo))
	SiloMetadataMUS.Marshal(*silo, buf)
	return buf
}

// UnmarshalSiloMetadata deserializes silo metadata from bytes.
func UnmarshalSiloMetadata(data []byte) (*core.SiloMetadata, error) {
	silo, _, err := SiloMetadataMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: silo metadata: %w", ErrSerializationFailed, err)
	}
	return &silo, nil
}

// MarshalAuditRecord serializes an audit record to bytes.
func MarshalAuditRecord(record *core.AuditRecord) []byte {
	buf := make([]byte, AuditRecordMUS.Size(*record))
	AuditRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalAuditRecord deserializes an audit record from bytes.
func UnmarshalAuditRecord(data []byte) (*core.AuditRecord, error) {
	record, _, err := AuditRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: audit record: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalUsageRecord serializes a usage record to bytes.
func MarshalUsageRecord(record *core.UsageRecord) []byte {
	buf := make([]byte, UsageRecordMUS.Size(*record))
	UsageRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalUsageRecord deserializes a usage record from bytes.
func UnmarshalUsageRecord(data []byte) (*core.UsageRecord, error) {
	record, _, err := UsageRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: usage record: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

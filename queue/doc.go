// Copyright 2026 Inkwell Documents
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


// Package queue defines the durable job queue abstraction that decouples
// upload from processing.
//
// The contract is at-least-once: an enqueued job is delivered to at
// least one worker, and a claim that is neither acknowledged nor
// negatively acknowledged is redelivered after a visibility timeout.
// Each delivery carries the job's attempt number; attempts beyond the
// configured retry limit move the job to a dead-letter path where it is
// reported, never silently dropped.
//
// Because enqueue is fire-and-forget, enqueue success says nothing about
// processing success. Processing outcomes surface only through the
// dead-letter path and operator logs.
//
// queue/redis implements the contract on Redis; other backends only need
// to produce Delivery values via NewDelivery.
package queue
